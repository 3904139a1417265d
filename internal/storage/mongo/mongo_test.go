//go:build integration

package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

func setupStore(t *testing.T) *docstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, uri, "storefront_test", ConnectOptions{})
	require.NoError(t, err)

	backend := New(db)
	t.Cleanup(func() { _ = backend.Close(context.Background()) })
	require.NoError(t, backend.EnsureIndexes(ctx))

	return docstore.New(backend)
}

func TestMongo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	want, err := schema.NewProduct(schema.ProductInput{
		Title:     "PulseTrack Watch",
		Price:     349,
		Category:  "Wearables",
		Images:    []string{"https://images.example.com/watch.jpg"},
		Thumbnail: schema.Ptr("https://images.example.com/watch.jpg"),
		Tags:      []string{"watch"},
		Specs:     map[string]string{"Body": "Ceramic"},
		Featured:  schema.Ptr(true),
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

func TestMongo_FilterAndCount(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	for _, featured := range []bool{true, false, true} {
		p, err := schema.NewProduct(schema.ProductInput{
			Title:    "Item",
			Price:    1,
			Category: "Misc",
			Featured: schema.Ptr(featured),
		})
		require.NoError(t, err)
		_, err = store.Create(ctx, p)
		require.NoError(t, err)
	}

	featured, err := store.GetDocuments(ctx, schema.ProductCollection, docstore.Filter{"featured": true})
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	n, err := store.CountDocuments(ctx, schema.ProductCollection, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = store.GetDocumentByID(ctx, schema.ProductCollection, docstore.NewID().String())
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	st := store.Status(ctx)
	assert.True(t, st.Connected)
	assert.Contains(t, st.Collections, "product")
}
