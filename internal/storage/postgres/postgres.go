// Package postgres implements the document backend on a single PostgreSQL
// JSONB table. Identities are generated ObjectID tokens, so documents look
// the same to callers as those stored in MongoDB.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

const (
	insertDocumentSQL = `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)`

	findDocumentsSQL = `SELECT id, body FROM documents
		WHERE collection = $1 AND body @> $2::jsonb ORDER BY seq`

	findDocumentByIDSQL = `SELECT id, body FROM documents WHERE collection = $1 AND id = $2`

	countDocumentsSQL = `SELECT count(*) FROM documents WHERE collection = $1 AND body @> $2::jsonb`

	listCollectionsSQL = `SELECT DISTINCT collection FROM documents ORDER BY collection`
)

var _ docstore.Backend = (*Backend)(nil)

// NewPool creates a pgxpool.Pool for databaseURL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Backend stores documents of every collection in the documents table.
type Backend struct {
	pool *pgxpool.Pool
}

// New returns a Backend that uses the given pool.
func New(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

func (b *Backend) Name() string { return "postgres" }

func (b *Backend) Database() string {
	return b.pool.Config().ConnConfig.Database
}

func (b *Backend) Insert(ctx context.Context, coll schema.Collection, doc bson.M) (docstore.ID, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return docstore.ID{}, fmt.Errorf("marshaling %s document: %w", coll, err)
	}

	id := docstore.NewID()
	if _, err := b.pool.Exec(ctx, insertDocumentSQL, string(coll), id.String(), body); err != nil {
		return docstore.ID{}, classify(fmt.Errorf("inserting %s document: %w", coll, err))
	}
	return id, nil
}

func (b *Backend) Find(ctx context.Context, coll schema.Collection, filter docstore.Filter) ([]bson.M, error) {
	contains, err := filterJSON(filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.pool.Query(ctx, findDocumentsSQL, string(coll), contains)
	if err != nil {
		return nil, classify(fmt.Errorf("finding %s documents: %w", coll, err))
	}

	docs, err := pgx.CollectRows(rows, scanDocument)
	if err != nil {
		return nil, classify(fmt.Errorf("reading %s documents: %w", coll, err))
	}
	return docs, nil
}

func (b *Backend) FindByID(ctx context.Context, coll schema.Collection, id docstore.ID) (bson.M, error) {
	rows, err := b.pool.Query(ctx, findDocumentByIDSQL, string(coll), id.String())
	if err != nil {
		return nil, classify(fmt.Errorf("getting %s document %s: %w", coll, id, err))
	}

	doc, err := pgx.CollectExactlyOneRow(rows, scanDocument)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, classify(fmt.Errorf("getting %s document %s: %w", coll, id, err))
	}
	return doc, nil
}

func (b *Backend) Count(ctx context.Context, coll schema.Collection, filter docstore.Filter) (int64, error) {
	contains, err := filterJSON(filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := b.pool.QueryRow(ctx, countDocumentsSQL, string(coll), contains).Scan(&n); err != nil {
		return 0, classify(fmt.Errorf("counting %s documents: %w", coll, err))
	}
	return n, nil
}

func (b *Backend) Collections(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, listCollectionsSQL)
	if err != nil {
		return nil, classify(fmt.Errorf("listing collections: %w", err))
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return docstore.Unavailable(err)
	}
	return nil
}

func scanDocument(row pgx.CollectableRow) (bson.M, error) {
	var (
		id   string
		body []byte
	)
	if err := row.Scan(&id, &body); err != nil {
		return nil, err
	}

	var doc bson.M
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	oid, err := docstore.ParseID(id)
	if err != nil {
		return nil, err
	}
	doc[docstore.NativeIDField] = oid.ObjectID()
	return doc, nil
}

// filterJSON renders an equality filter as a JSONB containment document.
func filterJSON(filter docstore.Filter) ([]byte, error) {
	if len(filter) == 0 {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}
	return out, nil
}

func classify(err error) error {
	var connErr *pgconn.ConnectError
	if pgconn.Timeout(err) || errors.As(err, &connErr) {
		return docstore.Unavailable(err)
	}
	return err
}
