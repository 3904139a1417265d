package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	appkg "github.com/xenking/storefront/internal/app"
	"github.com/xenking/storefront/internal/domain/seed"
)

func main() {
	var cfg appkg.StoreConfig

	flag.StringVar(&cfg.URL, "store-url", "", "store connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.Driver, "store-driver", "", "store driver: mongo or postgres (inferred from the URL when empty)")
	flag.StringVar(&cfg.Name, "store-name", "", "database name (or DATABASE_NAME env)")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	cfg, err = appkg.ResolveStoreConfig(cfg)
	if err != nil {
		lg.Fatal("Invalid arguments", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(zctx.Base(ctx, lg), lg, cfg); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
}

func run(ctx context.Context, lg *zap.Logger, cfg appkg.StoreConfig) error {
	lg.Info("Connecting to store", zap.String("driver", cfg.Driver), zap.String("database", cfg.Name))

	store, closeStore, err := appkg.OpenStore(ctx, lg, cfg, noop.NewTracerProvider())
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() { _ = closeStore(context.Background()) }()

	res, err := seed.NewService(store).SeedCatalog(ctx)
	if err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if !res.Seeded {
		lg.Info(res.Message)
		return nil
	}
	lg.Info("Seed completed", zap.Int("count", res.Count))
	return nil
}
