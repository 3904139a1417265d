package importer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/importer"
	"github.com/xenking/storefront/internal/schema"
	"github.com/xenking/storefront/internal/storage/memory"
)

const sample = `{"title":"Aurora Lamp","price":49.5,"category":"Home","tags":["light"],"featured":true}
{"title":"Drift Mug","price":12,"category":"Kitchen","specs":{"Volume":"350ml"},"unknown":{"nested":[1,2]}}

{"title":"Aurora Lamp","price":51,"category":"Home"}
{"title":"Broken","price":-3,"category":"Home"}
{"title":"No Price","category":"Home"}
not json
`

func titles(t *testing.T, store *docstore.Store) []string {
	t.Helper()

	docs, err := store.GetDocuments(context.Background(), schema.ProductCollection, nil)
	require.NoError(t, err)

	var out []string
	for _, doc := range docs {
		out = append(out, doc["title"].(string))
	}
	return out
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := docstore.New(memory.New("test"))

	rep, err := importer.New(store, importer.Options{Workers: 2}).Import(ctx, strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, importer.Report{Lines: 6, Imported: 2, Duplicates: 1, Invalid: 3}, rep)
	assert.ElementsMatch(t, []string{"Aurora Lamp", "Drift Mug"}, titles(t, store))

	docs, err := store.GetDocuments(ctx, schema.ProductCollection, docstore.Filter{"title": "Drift Mug"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var p schema.Product
	require.NoError(t, docstore.Decode(docs[0], &p))
	assert.Equal(t, map[string]string{"Volume": "350ml"}, p.Specs)
	assert.True(t, p.InStock)
	assert.False(t, p.Featured)
}

func TestImport_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	store := docstore.New(memory.New("test"))
	rep, err := importer.New(store, importer.Options{}).Import(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Imported)
}

func TestImport_SkipsExistingTitles(t *testing.T) {
	ctx := context.Background()
	store := docstore.New(memory.New("test"))

	existing, err := schema.NewProduct(schema.ProductInput{Title: "Drift Mug", Price: 10, Category: "Kitchen"})
	require.NoError(t, err)
	_, err = store.Create(ctx, existing)
	require.NoError(t, err)

	rep, err := importer.New(store, importer.Options{}).Import(ctx, strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Imported)
	assert.Equal(t, 2, rep.Duplicates)
	assert.Len(t, titles(t, store), 2)
}

func TestImport_Empty(t *testing.T) {
	store := docstore.New(memory.New("test"))

	rep, err := importer.New(store, importer.Options{}).Import(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, rep)
}

func TestImport_StoreUnavailable(t *testing.T) {
	store := docstore.New(nil)

	_, err := importer.New(store, importer.Options{}).Import(context.Background(), strings.NewReader(sample))
	require.ErrorIs(t, err, docstore.ErrStoreUnavailable)
}

// insertFailing accepts reads and rejects every write.
type insertFailing struct {
	*memory.Backend
}

func (insertFailing) Insert(context.Context, schema.Collection, bson.M) (docstore.ID, error) {
	return docstore.ID{}, errors.New("disk full")
}

func TestImport_WriteFailureAborts(t *testing.T) {
	store := docstore.New(insertFailing{Backend: memory.New("test")})

	rep, err := importer.New(store, importer.Options{Workers: 1}).Import(context.Background(), strings.NewReader(sample))
	require.Error(t, err)

	var pErr *docstore.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Zero(t, rep.Imported)
}
