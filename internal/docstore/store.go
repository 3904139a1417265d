// Package docstore maps validated schema entities onto document collections.
//
// A Store wraps a Backend (MongoDB, PostgreSQL JSONB or in-memory). Backends
// exchange native documents that carry the identity under "_id"; the Store
// translates that identity into a string "id" on every read path, so the
// native field never reaches a caller.
package docstore

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront/internal/schema"
)

// Backend is a document storage driver.
//
// Implementations must return ErrNotFound from FindByID on a miss and wrap
// connectivity failures with Unavailable.
type Backend interface {
	// Name is the driver name ("mongo", "postgres", "memory").
	Name() string
	// Database is the name of the backing database.
	Database() string
	Insert(ctx context.Context, coll schema.Collection, doc bson.M) (ID, error)
	Find(ctx context.Context, coll schema.Collection, filter Filter) ([]bson.M, error)
	FindByID(ctx context.Context, coll schema.Collection, id ID) (bson.M, error)
	Count(ctx context.Context, coll schema.Collection, filter Filter) (int64, error)
	Collections(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Store is the schema-validated document store. A Store with a nil backend is
// valid and reports ErrStoreUnavailable from every operation.
type Store struct {
	backend Backend
	tracer  trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithTracerProvider sets the provider used for store spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		s.tracer = tp.Tracer("github.com/xenking/storefront/internal/docstore")
	}
}

// New creates a Store over backend, which may be nil.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend}
	WithTracerProvider(otel.GetTracerProvider())(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a backend is configured.
func (s *Store) Available() bool {
	return s != nil && s.backend != nil
}

func (s *Store) start(ctx context.Context, op string, coll schema.Collection) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "docstore."+op, trace.WithAttributes(
		attribute.String("docstore.collection", string(coll)),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CreateDocument validates entity, stores its fields as a new document in
// coll and returns the assigned identity. Nothing is written when validation
// fails.
func (s *Store) CreateDocument(ctx context.Context, coll schema.Collection, entity schema.Entity) (_ ID, rerr error) {
	if err := schema.Validate(entity); err != nil {
		return ID{}, err
	}
	if !s.Available() {
		return ID{}, ErrStoreUnavailable
	}

	ctx, span := s.start(ctx, "create", coll)
	defer func() { finish(span, rerr) }()

	doc, err := encode(entity)
	if err != nil {
		return ID{}, &PersistenceError{Collection: coll, Cause: err}
	}

	id, err := s.backend.Insert(ctx, coll, doc)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return ID{}, err
		}
		return ID{}, &PersistenceError{Collection: coll, Cause: err}
	}
	return id, nil
}

// Create stores entity in its schema collection.
func (s *Store) Create(ctx context.Context, entity schema.Entity) (ID, error) {
	return s.CreateDocument(ctx, schema.CollectionOf(entity), entity)
}

// GetDocuments returns every document in coll matching filter, in the
// backend's native order.
func (s *Store) GetDocuments(ctx context.Context, coll schema.Collection, filter Filter) (_ []Document, rerr error) {
	if !s.Available() {
		return nil, ErrStoreUnavailable
	}

	ctx, span := s.start(ctx, "find", coll)
	defer func() { finish(span, rerr) }()

	natives, err := s.backend.Find(ctx, coll, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s documents", coll)
	}

	docs := make([]Document, 0, len(natives))
	for _, native := range natives {
		doc, err := translate(native)
		if err != nil {
			return nil, &DataIntegrityError{Collection: coll, Cause: err}
		}
		docs = append(docs, doc)
	}
	span.SetAttributes(attribute.Int("docstore.documents", len(docs)))
	return docs, nil
}

// GetDocumentByID returns the document with the given identity token.
func (s *Store) GetDocumentByID(ctx context.Context, coll schema.Collection, token string) (_ Document, rerr error) {
	id, err := ParseID(token)
	if err != nil {
		return nil, err
	}
	if !s.Available() {
		return nil, ErrStoreUnavailable
	}

	ctx, span := s.start(ctx, "get", coll)
	defer func() { finish(span, rerr) }()

	native, err := s.backend.FindByID(ctx, coll, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %s document %s", coll, token)
	}

	doc, err := translate(native)
	if err != nil {
		return nil, &DataIntegrityError{Collection: coll, ID: token, Cause: err}
	}
	return doc, nil
}

// CountDocuments returns the number of documents in coll matching filter.
func (s *Store) CountDocuments(ctx context.Context, coll schema.Collection, filter Filter) (_ int64, rerr error) {
	if !s.Available() {
		return 0, ErrStoreUnavailable
	}

	ctx, span := s.start(ctx, "count", coll)
	defer func() { finish(span, rerr) }()

	n, err := s.backend.Count(ctx, coll, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s documents", coll)
	}
	return n, nil
}

// Ping checks backend connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}
	return s.backend.Ping(ctx)
}
