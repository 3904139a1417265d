package docstore

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xenking/storefront/internal/schema"
)

// BreakerConfig controls the circuit breaker placed in front of a backend.
type BreakerConfig struct {
	// Failures is the number of consecutive connectivity failures that opens
	// the circuit.
	Failures uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// HalfOpenRequests is the number of probe requests let through while
	// half-open.
	HalfOpenRequests uint32
	// OnStateChange is called on every transition, if set.
	OnStateChange func(from, to gobreaker.State)
}

type breakerBackend struct {
	next Backend
	cb   *gobreaker.CircuitBreaker[any]
}

// WithBreaker wraps b so that repeated connectivity failures fail fast with
// ErrStoreUnavailable instead of waiting on the backend. Only errors matching
// ErrStoreUnavailable count as failures; misses and write rejections do not.
func WithBreaker(b Backend, cfg BreakerConfig) Backend {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	st := gobreaker.Settings{
		Name:        "docstore-" + b.Name(),
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrStoreUnavailable)
		},
	}
	if cfg.OnStateChange != nil {
		st.OnStateChange = func(_ string, from, to gobreaker.State) {
			cfg.OnStateChange(from, to)
		}
	}
	return &breakerBackend{next: b, cb: gobreaker.NewCircuitBreaker[any](st)}
}

func guard[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	v, err := cb.Execute(func() (any, error) {
		out, err := fn()
		return out, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, Unavailable(err)
		}
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

func (b *breakerBackend) Name() string     { return b.next.Name() }
func (b *breakerBackend) Database() string { return b.next.Database() }

func (b *breakerBackend) Insert(ctx context.Context, coll schema.Collection, doc bson.M) (ID, error) {
	return guard(b.cb, func() (ID, error) { return b.next.Insert(ctx, coll, doc) })
}

func (b *breakerBackend) Find(ctx context.Context, coll schema.Collection, filter Filter) ([]bson.M, error) {
	return guard(b.cb, func() ([]bson.M, error) { return b.next.Find(ctx, coll, filter) })
}

func (b *breakerBackend) FindByID(ctx context.Context, coll schema.Collection, id ID) (bson.M, error) {
	return guard(b.cb, func() (bson.M, error) { return b.next.FindByID(ctx, coll, id) })
}

func (b *breakerBackend) Count(ctx context.Context, coll schema.Collection, filter Filter) (int64, error) {
	return guard(b.cb, func() (int64, error) { return b.next.Count(ctx, coll, filter) })
}

func (b *breakerBackend) Collections(ctx context.Context) ([]string, error) {
	return guard(b.cb, func() ([]string, error) { return b.next.Collections(ctx) })
}

func (b *breakerBackend) Ping(ctx context.Context) error {
	_, err := guard(b.cb, func() (struct{}, error) { return struct{}{}, b.next.Ping(ctx) })
	return err
}
