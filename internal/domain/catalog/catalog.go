// Package catalog serves read-only product queries over the document store.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

// ErrCacheMiss is returned by a Cache that holds no entry for an id.
var ErrCacheMiss = errors.New("catalog cache miss")

// ProductView is the outward representation of a stored product.
type ProductView struct {
	ID          string            `bson:"id" validate:"required"`
	Title       string            `bson:"title" validate:"required"`
	Description *string           `bson:"description"`
	Price       float64           `bson:"price" validate:"gte=0"`
	Category    string            `bson:"category" validate:"required"`
	Images      []string          `bson:"images"`
	Thumbnail   *string           `bson:"thumbnail"`
	Tags        []string          `bson:"tags"`
	Specs       map[string]string `bson:"specs"`
	InStock     bool              `bson:"in_stock"`
	Inventory   int               `bson:"inventory" validate:"gte=0"`
	Featured    bool              `bson:"featured"`
	Rating      float64           `bson:"rating" validate:"gte=0,lte=5"`
}

// Cache stores product views by id.
type Cache interface {
	Get(ctx context.Context, id string) (*ProductView, error)
	Set(ctx context.Context, view *ProductView) error
}

// Service answers catalog queries.
type Service struct {
	store *docstore.Store
	cache Cache
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching for GetProduct.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// NewService creates a catalog Service over store.
func NewService(store *docstore.Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns every product in store order.
func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	return s.list(ctx, nil)
}

// ListFeaturedProducts returns the products flagged as featured.
func (s *Service) ListFeaturedProducts(ctx context.Context) ([]ProductView, error) {
	return s.list(ctx, docstore.Filter{"featured": true})
}

func (s *Service) list(ctx context.Context, filter docstore.Filter) ([]ProductView, error) {
	docs, err := s.store.GetDocuments(ctx, schema.ProductCollection, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	views := make([]ProductView, 0, len(docs))
	for _, doc := range docs {
		v, err := toView(doc)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// GetProduct returns the product with the given id. Malformed ids yield
// docstore.ErrInvalidIdentity and unknown ones docstore.ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	if s.cache != nil {
		v, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			return v, nil
		case !errors.Is(err, ErrCacheMiss):
			zctx.From(ctx).Warn("Product cache read failed", zap.String("id", id), zap.Error(err))
		}
	}

	doc, err := s.store.GetDocumentByID(ctx, schema.ProductCollection, id)
	if err != nil {
		return nil, err
	}
	v, err := toView(doc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, v); err != nil {
			zctx.From(ctx).Warn("Product cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return v, nil
}

// toView coerces a stored document into a ProductView. Absent optional
// fields take the view defaults.
func toView(doc docstore.Document) (*ProductView, error) {
	v := &ProductView{InStock: true}
	if err := docstore.Decode(doc, v); err != nil {
		return nil, &docstore.DataIntegrityError{Collection: schema.ProductCollection, ID: doc.ID(), Cause: err}
	}
	if err := schema.ValidateStruct(v); err != nil {
		return nil, &docstore.DataIntegrityError{Collection: schema.ProductCollection, ID: doc.ID(), Cause: err}
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Specs == nil {
		v.Specs = map[string]string{}
	}
	return v, nil
}
