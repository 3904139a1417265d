// Package app wires configuration, storage, services and the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/cache"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/seed"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store.Driver),
	)

	store, closeStore, err := OpenStore(ctx, lg, cfg.Store, m.TracerProvider())
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			lg.Warn("Close store", zap.Error(err))
		}
	}()

	// Optional Redis: product cache and shared rate limiter.
	var rdb *redis.Client
	if cfg.Cache.URL != "" {
		opts, err := redis.ParseURL(cfg.Cache.URL)
		if err != nil {
			return errors.Wrap(err, "parse redis url")
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
	}

	healthSvc := health.New()
	if store.Available() {
		healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(store))
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	var catalogOpts []catalog.Option
	if rdb != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(cache.NewRedisCache(rdb, cfg.Cache.TTL)))
		lg.Info("Product cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}
	checkoutSvc, err := checkout.NewService(store, checkout.WithMeterProvider(m.MeterProvider()))
	if err != nil {
		return errors.Wrap(err, "create checkout service")
	}

	h := handler.NewHandler(
		catalog.NewService(store, catalogOpts...),
		checkoutSvc,
		seed.NewService(store),
		store,
	)

	var write []httpmiddleware.Middleware
	if cfg.RateLimit.Max > 0 {
		write = append(write, httpmiddleware.RateLimit(newLimiter(ctx, rdb, cfg.RateLimit), nil))
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(newRouter(h, healthSvc, write...),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newRouter mounts the probes and API routes. Request logging and route
// labelling run inside the router so they see the matched pattern.
func newRouter(h *handler.Handler, hc *health.Health, write ...httpmiddleware.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(httpmiddleware.LogRequests(), httpmiddleware.Labeler())
	r.Get("/livez", hc.LiveEndpoint)
	r.Get("/readyz", hc.ReadyEndpoint)
	h.Register(r, write...)
	return r
}

// newLimiter shares counters through Redis when available.
func newLimiter(ctx context.Context, rdb *redis.Client, cfg RateLimitConfig) httpmiddleware.Limiter {
	if rdb != nil {
		return httpmiddleware.NewRedisLimiter(rdb, "storefront:ratelimit", cfg.Max, cfg.Window)
	}
	l := httpmiddleware.NewMemoryLimiter(cfg.Max, cfg.Window)
	go l.Run(ctx)
	return l
}
