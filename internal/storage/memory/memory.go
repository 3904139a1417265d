// Package memory implements an in-process document backend. Documents are
// stored as encoded BSON, so callers never share maps with the store.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

var _ docstore.Backend = (*Backend)(nil)

type record struct {
	id  docstore.ID
	raw bson.Raw
}

// Backend keeps documents per collection in insertion order.
type Backend struct {
	mu          sync.RWMutex
	database    string
	collections map[schema.Collection][]record
}

// New creates an empty Backend.
func New(database string) *Backend {
	return &Backend{
		database:    database,
		collections: make(map[schema.Collection][]record),
	}
}

func (b *Backend) Name() string     { return "memory" }
func (b *Backend) Database() string { return b.database }

func (b *Backend) Insert(ctx context.Context, coll schema.Collection, doc bson.M) (docstore.ID, error) {
	if err := ctx.Err(); err != nil {
		return docstore.ID{}, err
	}

	id := docstore.NewID()
	stored := make(bson.M, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored[docstore.NativeIDField] = id.ObjectID()

	raw, err := bson.Marshal(stored)
	if err != nil {
		return docstore.ID{}, errors.Wrap(err, "encode document")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[coll] = append(b.collections[coll], record{id: id, raw: raw})
	return id, nil
}

func (b *Backend) Find(ctx context.Context, coll schema.Collection, filter docstore.Filter) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	records := b.collections[coll]
	b.mu.RUnlock()

	out := make([]bson.M, 0, len(records))
	for _, r := range records {
		doc, err := decode(r.raw)
		if err != nil {
			return nil, err
		}
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (b *Backend) FindByID(ctx context.Context, coll schema.Collection, id docstore.ID) (bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.collections[coll] {
		if r.id == id {
			return decode(r.raw)
		}
	}
	return nil, docstore.ErrNotFound
}

func (b *Backend) Count(ctx context.Context, coll schema.Collection, filter docstore.Filter) (int64, error) {
	if len(filter) == 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		return int64(len(b.collections[coll])), nil
	}
	docs, err := b.Find(ctx, coll, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (b *Backend) Collections(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.collections))
	for name := range b.collections {
		names = append(names, string(name))
	}
	return names, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return ctx.Err()
}

func decode(raw bson.Raw) (bson.M, error) {
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return doc, nil
}

func matches(doc bson.M, filter docstore.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

// equal compares scalar values, treating all numeric types alike.
func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
