package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/seed"
	"github.com/xenking/storefront/internal/schema"
	"github.com/xenking/storefront/internal/storage/memory"
)

// --- Helpers ---

func newTestServer(t *testing.T, store *docstore.Store) *httptest.Server {
	t.Helper()

	checkoutSvc, err := checkout.NewService(store)
	require.NoError(t, err)

	h := NewHandler(catalog.NewService(store), checkoutSvc, seed.NewService(store), store)
	r := chi.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode == http.StatusOK {
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	}
	return resp.StatusCode, data
}

// fields decodes a JSON object into its raw top-level members.
func fields(t *testing.T, data []byte) map[string]jx.Raw {
	t.Helper()

	out := map[string]jx.Raw{}
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		out[key] = append(jx.Raw(nil), raw...)
		return nil
	})
	require.NoError(t, err, string(data))
	return out
}

func arrayLen(t *testing.T, data []byte) int {
	t.Helper()

	n := 0
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		n++
		return d.Skip()
	})
	require.NoError(t, err, string(data))
	return n
}

// --- Tests ---

func TestRoot(t *testing.T) {
	srv := newTestServer(t, docstore.New(memory.New("test")))

	status, body := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"E-Commerce API running"}`, string(body))
}

func TestSeedThenBrowse(t *testing.T) {
	srv := newTestServer(t, docstore.New(memory.New("test")))

	status, body := do(t, srv, http.MethodPost, "/api/seed", "")
	require.Equal(t, http.StatusOK, status)
	f := fields(t, body)
	assert.Equal(t, "true", f["seeded"].String())
	assert.Equal(t, "8", f["count"].String())
	assert.Equal(t, 8, arrayLen(t, f["ids"]))

	status, body = do(t, srv, http.MethodPost, "/api/seed", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"seeded":false,"message":"Products already exist"}`, string(body))

	status, body = do(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 8, arrayLen(t, body))

	status, body = do(t, srv, http.MethodGet, "/api/products/featured", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, arrayLen(t, body))
}

func TestGetProduct(t *testing.T) {
	store := docstore.New(memory.New("test"))
	p, err := schema.NewProduct(schema.ProductInput{
		Title:    "HoloCore Bottle",
		Price:    39,
		Category: "Accessories",
		Tags:     []string{"bottle"},
		Specs:    map[string]string{"Volume": "500ml"},
	})
	require.NoError(t, err)
	id, err := store.Create(context.Background(), p)
	require.NoError(t, err)

	srv := newTestServer(t, store)

	status, body := do(t, srv, http.MethodGet, "/api/products/"+id.String(), "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"id": "`+id.String()+`",
		"title": "HoloCore Bottle",
		"description": null,
		"price": 39,
		"category": "Accessories",
		"images": [],
		"thumbnail": null,
		"tags": ["bottle"],
		"specs": {"Volume": "500ml"},
		"in_stock": true,
		"inventory": 10,
		"featured": false,
		"rating": 4.6
	}`, string(body))
}

func TestGetProduct_Errors(t *testing.T) {
	srv := newTestServer(t, docstore.New(memory.New("test")))

	status, body := do(t, srv, http.MethodGet, "/api/products/not-a-valid-id", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "400", fields(t, body)["code"].String())

	status, body = do(t, srv, http.MethodGet, "/api/products/"+docstore.NewID().String(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"code":404,"message":"Product not found"}`, string(body))
}

func TestCheckout(t *testing.T) {
	store := docstore.New(memory.New("test"))
	srv := newTestServer(t, store)

	status, body := do(t, srv, http.MethodPost, "/api/checkout", `{
		"items": [
			{"product_id": "a", "title": "Flux Knit Tee", "price": 10, "quantity": 2},
			{"product_id": "b", "title": "Iridesse Socks", "price": 5, "thumbnail": null}
		],
		"email": "buyer@example.com",
		"notes": "gift",
		"coupon": "ignored"
	}`)
	require.Equal(t, http.StatusOK, status, string(body))

	f := fields(t, body)
	assert.Equal(t, `"paid"`, f["status"].String())
	total, err := jx.DecodeBytes(f["total"]).Float64()
	require.NoError(t, err)
	assert.Equal(t, 27.0, total)

	orderID, err := jx.DecodeBytes(f["order_id"]).Str()
	require.NoError(t, err)
	doc, err := store.GetDocumentByID(context.Background(), schema.OrderCollection, orderID)
	require.NoError(t, err)
	assert.Equal(t, "gift", doc["notes"])
}

func TestCheckout_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "Malformed", body: `{"items": [`, status: http.StatusBadRequest},
		{name: "NotAnObject", body: `[]`, status: http.StatusBadRequest},
		{name: "WrongType", body: `{"items": [], "email": 5}`, status: http.StatusBadRequest},
		{name: "MissingEmail", body: `{"items": []}`, status: http.StatusUnprocessableEntity},
		{name: "MissingPrice", body: `{"items": [{"product_id": "a", "title": "t"}], "email": "a@b.c"}`, status: http.StatusUnprocessableEntity},
		{name: "ZeroQuantity", body: `{"items": [{"product_id": "a", "title": "t", "price": 1, "quantity": 0}], "email": "a@b.c"}`, status: http.StatusUnprocessableEntity},
		{name: "NegativePrice", body: `{"items": [{"product_id": "a", "title": "t", "price": -1}], "email": "a@b.c"}`, status: http.StatusUnprocessableEntity},
		{name: "MissingProductID", body: `{"items": [{"title": "t", "price": 1}], "email": "a@b.c"}`, status: http.StatusUnprocessableEntity},
		{name: "TotalOverflow", body: `{"items": [{"product_id": "a", "title": "t", "price": 1e308, "quantity": 10}], "email": "a@b.c"}`, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := docstore.New(memory.New("test"))
			srv := newTestServer(t, store)

			status, body := do(t, srv, http.MethodPost, "/api/checkout", tt.body)
			assert.Equal(t, tt.status, status, string(body))

			n, err := store.CountDocuments(context.Background(), schema.OrderCollection, nil)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCheckout_EmptyIdentifiers(t *testing.T) {
	store := docstore.New(memory.New("test"))
	srv := newTestServer(t, store)

	status, body := do(t, srv, http.MethodPost, "/api/checkout",
		`{"items": [{"product_id": "", "title": "", "price": 1}], "email": "a"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	total, err := jx.DecodeBytes(fields(t, body)["total"]).Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.08, total)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	// "é" is two bytes; the cut backs off to the previous character.
	assert.Equal(t, "ab", truncate("abé", 3))
	assert.Equal(t, "", truncate("日本", 2))
}

func TestStoreUnavailable(t *testing.T) {
	srv := newTestServer(t, docstore.New(nil))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/products", ""},
		{http.MethodGet, "/api/products/featured", ""},
		{http.MethodGet, "/api/products/" + docstore.NewID().String(), ""},
		{http.MethodPost, "/api/seed", ""},
		{http.MethodPost, "/api/checkout", `{"items": [], "email": "a@b.c"}`},
	} {
		status, body := do(t, srv, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusServiceUnavailable, status, tc.path)
		assert.JSONEq(t, `{"code":503,"message":"Database not available"}`, string(body))
	}
}

func TestDiagnostics(t *testing.T) {
	t.Run("Connected", func(t *testing.T) {
		store := docstore.New(memory.New("shop"))
		srv := newTestServer(t, store)
		status, _ := do(t, srv, http.MethodPost, "/api/seed", "")
		require.Equal(t, http.StatusOK, status)

		status, body := do(t, srv, http.MethodGet, "/test", "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{
			"backend": "Running",
			"database": "Connected & Working",
			"database_url": "Set",
			"database_name": "shop",
			"driver": "memory",
			"connection_status": "Connected",
			"collections": ["product"]
		}`, string(body))
	})
	t.Run("NotConfigured", func(t *testing.T) {
		srv := newTestServer(t, docstore.New(nil))

		status, body := do(t, srv, http.MethodGet, "/test", "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{
			"backend": "Running",
			"database": "Not Available",
			"database_url": "Not Set",
			"database_name": null,
			"driver": "",
			"connection_status": "Not Connected",
			"collections": []
		}`, string(body))
	})
}
