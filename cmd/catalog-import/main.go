// Command catalog-import bulk-loads products from NDJSON files, optionally
// gzip-compressed, skipping titles already present in the store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	appkg "github.com/xenking/storefront/internal/app"
	"github.com/xenking/storefront/internal/importer"
)

func main() {
	var (
		cfg  appkg.StoreConfig
		opts importer.Options
	)

	flag.StringVar(&cfg.URL, "store-url", "", "store connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.Driver, "store-driver", "", "store driver: mongo or postgres (inferred from the URL when empty)")
	flag.StringVar(&cfg.Name, "store-name", "", "database name (or DATABASE_NAME env)")
	flag.IntVar(&opts.Workers, "workers", 8, "concurrent writers")
	flag.UintVar(&opts.ExpectedTitles, "expected", 100_000, "expected number of distinct titles, sizes the bloom filter")
	flag.Float64Var(&opts.FalsePositiveRate, "fpr", 0.001, "bloom filter false positive rate")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	files := flag.Args()
	if len(files) == 0 {
		lg.Fatal("Usage: catalog-import [flags] FILE [FILE...]")
	}
	cfg, err = appkg.ResolveStoreConfig(cfg)
	if err != nil {
		lg.Fatal("Invalid arguments", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(zctx.Base(ctx, lg), lg, cfg, opts, files); err != nil {
		lg.Fatal("Import failed", zap.Error(err))
	}
}

func run(ctx context.Context, lg *zap.Logger, cfg appkg.StoreConfig, opts importer.Options, files []string) error {
	store, closeStore, err := appkg.OpenStore(ctx, lg, cfg, noop.NewTracerProvider())
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() { _ = closeStore(context.Background()) }()

	imp := importer.New(store, opts)

	// Files run one after another so later files see titles from earlier ones.
	for _, path := range files {
		start := time.Now()
		rep, err := importFile(ctx, imp, path)
		if err != nil {
			return errors.Wrapf(err, "import %s", path)
		}
		lg.Info("File imported",
			zap.String("path", path),
			zap.Int("lines", rep.Lines),
			zap.Int("imported", rep.Imported),
			zap.Int("duplicates", rep.Duplicates),
			zap.Int("invalid", rep.Invalid),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}

func importFile(ctx context.Context, imp *importer.Importer, path string) (importer.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Report{}, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	return imp.Import(ctx, f)
}
