// Package seed populates an empty catalog with demo products.
package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

// MessageAlreadySeeded is reported when the catalog already has products.
const MessageAlreadySeeded = "Products already exist"

// Result reports the outcome of SeedCatalog.
type Result struct {
	Seeded  bool
	Count   int
	IDs     []string
	Message string
}

// Service seeds the product collection.
type Service struct {
	store *docstore.Store
}

// NewService creates a seeding Service over store.
func NewService(store *docstore.Store) *Service {
	return &Service{store: store}
}

// SeedCatalog writes the Catalog fixtures when the product collection is
// empty and does nothing otherwise.
//
// The emptiness check and the writes are not atomic: two concurrent calls
// on an empty catalog can both write the fixtures.
func (s *Service) SeedCatalog(ctx context.Context) (*Result, error) {
	n, err := s.store.CountDocuments(ctx, schema.ProductCollection, nil)
	if err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	if n > 0 {
		return &Result{Seeded: false, Message: MessageAlreadySeeded}, nil
	}

	inputs := Catalog()
	products := make([]schema.Product, len(inputs))
	for i, in := range inputs {
		p, err := schema.NewProduct(in)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %q", in.Title)
		}
		products[i] = p
	}

	ids := make([]string, len(products))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range products {
		g.Go(func() error {
			id, err := s.store.Create(gctx, p)
			if err != nil {
				return errors.Wrapf(err, "create %q", p.Title)
			}
			ids[i] = id.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Catalog seeded", zap.Int("count", len(ids)))
	return &Result{Seeded: true, Count: len(ids), IDs: ids}, nil
}
