package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/seed"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), zap.NewNop(), StoreConfig{
		Driver: DriverMemory,
		Name:   "shop",
	}, noop.NewTracerProvider())
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn(context.Background())) }()

	assert.True(t, store.Available())
	st := store.Status(context.Background())
	assert.True(t, st.Connected)
	assert.Equal(t, "memory", st.Backend)
	assert.Equal(t, "shop", st.Database)
}

func TestOpenStore_NotConfigured(t *testing.T) {
	for _, driver := range []string{DriverMongo, DriverPostgres} {
		store, closeFn, err := OpenStore(context.Background(), zap.NewNop(), StoreConfig{
			Driver: driver,
			Name:   "shop",
		}, noop.NewTracerProvider())
		require.NoError(t, err)
		assert.False(t, store.Available())
		assert.NoError(t, closeFn(context.Background()))
	}
}

func TestRouter(t *testing.T) {
	store, _, err := OpenStore(context.Background(), zap.NewNop(), StoreConfig{
		Driver: DriverMemory,
		Name:   "shop",
	}, noop.NewTracerProvider())
	require.NoError(t, err)

	checkoutSvc, err := checkout.NewService(store)
	require.NoError(t, err)
	h := handler.NewHandler(catalog.NewService(store), checkoutSvc, seed.NewService(store), store)

	hc := health.New()
	hc.AddReadinessCheck("store", time.Second, health.PingCheck(store))
	hc.SetReady(true)

	limiter := httpmiddleware.NewMemoryLimiter(1, time.Hour)
	srv := httptest.NewServer(newRouter(h, hc, httpmiddleware.RateLimit(limiter, nil)))
	t.Cleanup(srv.Close)

	status := func(method, path string) int {
		req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, status(http.MethodGet, "/livez"))
	assert.Equal(t, http.StatusOK, status(http.MethodGet, "/readyz"))
	assert.Equal(t, http.StatusOK, status(http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, status(http.MethodPost, "/api/seed"))
	assert.Equal(t, http.StatusTooManyRequests, status(http.MethodPost, "/api/seed"))

	// Reads are not rate limited.
	for range 3 {
		assert.Equal(t, http.StatusOK, status(http.MethodGet, "/api/products"))
	}
	assert.Equal(t, http.StatusNotFound, status(http.MethodGet, "/nope"))
}
