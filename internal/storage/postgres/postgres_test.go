//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

func setupStore(t *testing.T) *docstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("shop"),
		tcpostgres.WithPassword("shop"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, RunMigrations(ctx, pool))

	return docstore.New(New(pool))
}

func TestPostgres_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	want, err := schema.NewProduct(schema.ProductInput{
		Title:       "Aurora Layered Jacket",
		Description: schema.Ptr("Thermo-reactive panels"),
		Price:       259,
		Category:    "Outerwear",
		Images:      []string{"https://images.example.com/jacket.jpg"},
		Tags:        []string{"jacket"},
		Specs:       map[string]string{"Shell": "PolyPhase"},
	})
	require.NoError(t, err)

	id, err := store.Create(ctx, want)
	require.NoError(t, err)

	doc, err := store.GetDocumentByID(ctx, schema.ProductCollection, id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), doc.ID())
	assert.NotContains(t, doc, docstore.NativeIDField)

	var got schema.Product
	require.NoError(t, docstore.Decode(doc, &got))
	assert.Equal(t, want, got)
}

func TestPostgres_FilterOrderAndCount(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	titles := []string{"first", "second", "third"}
	for i, title := range titles {
		p, err := schema.NewProduct(schema.ProductInput{
			Title:    title,
			Price:    float64(i),
			Category: "Misc",
			Featured: schema.Ptr(i != 1),
		})
		require.NoError(t, err)
		_, err = store.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := store.GetDocuments(ctx, schema.ProductCollection, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, doc := range all {
		assert.Equal(t, titles[i], doc["title"])
	}

	featured, err := store.GetDocuments(ctx, schema.ProductCollection, docstore.Filter{"featured": true})
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	n, err := store.CountDocuments(ctx, schema.ProductCollection, docstore.Filter{"featured": false})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.GetDocumentByID(ctx, schema.ProductCollection, docstore.NewID().String())
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
