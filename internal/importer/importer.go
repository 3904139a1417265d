// Package importer bulk-loads products from newline-delimited JSON through
// the validated document store path.
package importer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

const maxLineBytes = 1 << 20

// Options tunes an import.
type Options struct {
	// Workers is the number of concurrent writers.
	Workers int
	// ExpectedTitles sizes the bloom filter of known titles.
	ExpectedTitles uint
	// FalsePositiveRate of the bloom filter.
	FalsePositiveRate float64
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.ExpectedTitles == 0 {
		o.ExpectedTitles = 100_000
	}
	if o.FalsePositiveRate <= 0 {
		o.FalsePositiveRate = 0.001
	}
}

// Report summarizes an import.
type Report struct {
	Lines      int
	Imported   int
	Duplicates int
	Invalid    int
}

// Importer writes products into a store, skipping titles that already exist
// in the store or earlier in the input.
type Importer struct {
	store *docstore.Store
	opts  Options
}

// New creates an Importer.
func New(store *docstore.Store, opts Options) *Importer {
	opts.setDefaults()
	return &Importer{store: store, opts: opts}
}

// titleIndex answers "was this title seen". The bloom filter holds every
// title stored before the run; a hit is confirmed against the store.
// Titles accepted during the run are tracked exactly.
type titleIndex struct {
	store    *docstore.Store
	existing *bloom.BloomFilter
	accepted map[string]struct{}
}

func (ix *titleIndex) seen(ctx context.Context, title string) (bool, error) {
	if _, ok := ix.accepted[title]; ok {
		return true, nil
	}
	if !ix.existing.TestString(title) {
		return false, nil
	}
	n, err := ix.store.CountDocuments(ctx, schema.ProductCollection, docstore.Filter{"title": title})
	if err != nil {
		return false, errors.Wrap(err, "confirm duplicate")
	}
	return n > 0, nil
}

func (im *Importer) loadIndex(ctx context.Context) (*titleIndex, error) {
	docs, err := im.store.GetDocuments(ctx, schema.ProductCollection, nil)
	if err != nil {
		return nil, errors.Wrap(err, "load existing products")
	}

	filter := bloom.NewWithEstimates(max(im.opts.ExpectedTitles, uint(len(docs))), im.opts.FalsePositiveRate)
	for _, doc := range docs {
		if title, ok := doc["title"].(string); ok {
			filter.AddString(title)
		}
	}
	return &titleIndex{
		store:    im.store,
		existing: filter,
		accepted: make(map[string]struct{}),
	}, nil
}

// Import reads products from r, plain or gzip-compressed NDJSON. Lines that
// fail to decode or validate are counted and skipped; store failures abort.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	var rep Report
	lg := zctx.From(ctx)

	src, closeSrc, err := maybeGzip(r)
	if err != nil {
		return rep, err
	}
	defer func() { _ = closeSrc() }()

	index, err := im.loadIndex(ctx)
	if err != nil {
		return rep, err
	}

	var imported atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.opts.Workers)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := gctx.Err(); err != nil {
			break
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rep.Lines++

		in, err := decodeProduct(line)
		if err == nil {
			var p schema.Product
			if p, err = schema.NewProduct(in); err == nil {
				dup, err := index.seen(gctx, p.Title)
				if err != nil {
					_ = g.Wait()
					return rep, err
				}
				if dup {
					rep.Duplicates++
					continue
				}
				index.accepted[p.Title] = struct{}{}
				g.Go(func() error {
					if _, err := im.store.Create(gctx, p); err != nil {
						return errors.Wrapf(err, "create %q", p.Title)
					}
					imported.Add(1)
					return nil
				})
				continue
			}
		}
		rep.Invalid++
		lg.Warn("Skipping invalid product", zap.Int("line", rep.Lines), zap.Error(err))
	}

	werr := g.Wait()
	rep.Imported = int(imported.Load())
	if werr != nil {
		return rep, werr
	}
	if err := scanner.Err(); err != nil {
		return rep, errors.Wrap(err, "scan input")
	}
	return rep, ctx.Err()
}

// maybeGzip sniffs the gzip magic number and wraps r accordingly.
func maybeGzip(r io.Reader) (io.Reader, func() error, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, errors.Wrap(err, "read input")
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open gzip stream")
		}
		return gz, gz.Close, nil
	}
	return br, func() error { return nil }, nil
}
