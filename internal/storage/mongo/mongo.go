// Package mongo implements the document backend on MongoDB.
package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

var _ docstore.Backend = (*Backend)(nil)

// ConnectOptions tunes the client created by Connect.
type ConnectOptions struct {
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string, o ConnectOptions) (*mongo.Database, error) {
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.ServerSelectionTimeout == 0 {
		o.ServerSelectionTimeout = 5 * time.Second
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 100
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(o.ConnectTimeout).
		SetServerSelectionTimeout(o.ServerSelectionTimeout).
		SetMaxPoolSize(o.MaxPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}

	return client.Database(database), nil
}

// Backend stores each collection in a MongoDB collection of the same name.
type Backend struct {
	db *mongo.Database
}

// New returns a Backend over db.
func New(db *mongo.Database) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Name() string     { return "mongo" }
func (b *Backend) Database() string { return b.db.Name() }

// Close disconnects the underlying client.
func (b *Backend) Close(ctx context.Context) error {
	return b.db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes used by catalog queries.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	_, err := b.db.Collection(string(schema.ProductCollection)).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "featured", Value: 1}},
	})
	if err != nil {
		return classify(errors.Wrap(err, "create product indexes"))
	}
	return nil
}

func (b *Backend) Insert(ctx context.Context, coll schema.Collection, doc bson.M) (docstore.ID, error) {
	res, err := b.db.Collection(string(coll)).InsertOne(ctx, doc)
	if err != nil {
		return docstore.ID{}, classify(errors.Wrapf(err, "insert into %s", coll))
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return docstore.ID{}, errors.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return docstore.IDFromObjectID(oid), nil
}

func (b *Backend) Find(ctx context.Context, coll schema.Collection, filter docstore.Filter) ([]bson.M, error) {
	cur, err := b.db.Collection(string(coll)).Find(ctx, toBSON(filter))
	if err != nil {
		return nil, classify(errors.Wrapf(err, "find in %s", coll))
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(errors.Wrapf(err, "read %s cursor", coll))
	}
	return docs, nil
}

func (b *Backend) FindByID(ctx context.Context, coll schema.Collection, id docstore.ID) (bson.M, error) {
	var doc bson.M
	err := b.db.Collection(string(coll)).FindOne(ctx, bson.M{docstore.NativeIDField: id.ObjectID()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, classify(errors.Wrapf(err, "find %s in %s", id, coll))
	}
	return doc, nil
}

func (b *Backend) Count(ctx context.Context, coll schema.Collection, filter docstore.Filter) (int64, error) {
	n, err := b.db.Collection(string(coll)).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, classify(errors.Wrapf(err, "count %s", coll))
	}
	return n, nil
}

func (b *Backend) Collections(ctx context.Context) ([]string, error) {
	names, err := b.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, classify(errors.Wrap(err, "list collections"))
	}
	return names, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return docstore.Unavailable(err)
	}
	return nil
}

func toBSON(filter docstore.Filter) bson.M {
	out := make(bson.M, len(filter))
	for k, v := range filter {
		out[k] = v
	}
	return out
}

// classify marks connectivity failures so they surface as ErrStoreUnavailable.
func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return docstore.Unavailable(err)
	}
	return err
}
