package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/storage/memory"
	mongostore "github.com/xenking/storefront/internal/storage/mongo"
	"github.com/xenking/storefront/internal/storage/postgres"
)

// OpenStore connects the configured backend and wraps it in a circuit
// breaker. The returned close func releases the connection. Without a URL
// (and a driver other than memory) the store has no backend.
func OpenStore(ctx context.Context, lg *zap.Logger, cfg StoreConfig, tp trace.TracerProvider) (*docstore.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	backend, closeFn, err := openBackend(ctx, lg, cfg)
	if err != nil {
		return nil, nil, err
	}
	if backend == nil {
		lg.Warn("No store URL configured, store operations will fail",
			zap.String("driver", cfg.Driver),
		)
		return docstore.New(nil, docstore.WithTracerProvider(tp)), noop, nil
	}

	backend = docstore.WithBreaker(backend, docstore.BreakerConfig{
		Failures: cfg.Breaker.Failures,
		Timeout:  cfg.Breaker.Timeout,
		OnStateChange: func(from, to gobreaker.State) {
			lg.Warn("Store circuit breaker state changed",
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
	lg.Info("Store connected",
		zap.String("driver", backend.Name()),
		zap.String("database", backend.Database()),
	)
	return docstore.New(backend, docstore.WithTracerProvider(tp)), closeFn, nil
}

func openBackend(ctx context.Context, lg *zap.Logger, cfg StoreConfig) (docstore.Backend, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if cfg.Driver == DriverMemory {
		return memory.New(cfg.Name), noop, nil
	}
	if cfg.URL == "" {
		return nil, noop, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	switch cfg.Driver {
	case DriverMongo:
		db, err := mongostore.Connect(connectCtx, cfg.URL, cfg.Name, mongostore.ConnectOptions{
			ConnectTimeout:         cfg.ConnectTimeout,
			ServerSelectionTimeout: cfg.ServerSelectionTimeout,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect mongo")
		}
		b := mongostore.New(db)
		if err := b.EnsureIndexes(connectCtx); err != nil {
			lg.Warn("Ensure indexes failed", zap.Error(err))
		}
		return b, b.Close, nil

	case DriverPostgres:
		pool, err := postgres.NewPool(connectCtx, cfg.URL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(connectCtx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		return postgres.New(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil

	default:
		return nil, nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}
