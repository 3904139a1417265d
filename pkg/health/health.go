// Package health serves liveness and readiness probes.
//
// Every registered probe runs on its own ticker. A probe turns unhealthy
// after FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so a single blip does not flap
// the endpoint.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the endpoint a probe reports to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// ProbeOption tunes a probe.
type ProbeOption func(*probe)

// WithThresholds overrides the default failure (3) and success (1)
// thresholds.
func WithThresholds(failures, successes int) ProbeOption {
	return func(p *probe) {
		p.failureThreshold = max(failures, 1)
		p.successThreshold = max(successes, 1)
	}
}

// probe state: fails/oks are touched only by the probe goroutine, healthy
// and lastErr are read by handlers.
type probe struct {
	name             string
	kind             Kind
	timeout          time.Duration
	check            CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (p *probe) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)
	if err != nil {
		p.oks = 0
		if p.fails++; p.fails >= p.failureThreshold {
			p.healthy.Store(false)
		}
		return
	}
	p.fails = 0
	if p.oks++; p.oks >= p.successThreshold {
		p.healthy.Store(true)
	}
}

func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error(), true
	}
	return "check is unhealthy", true
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

// Health aggregates probes and the manual readiness switch.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New creates a Health that is not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// Add registers a probe. Probes start healthy.
func (h *Health) Add(kind Kind, name string, timeout time.Duration, check CheckFunc, opts ...ProbeOption) {
	p := &probe{
		name:             name,
		kind:             kind,
		timeout:          timeout,
		check:            check,
		failureThreshold: 3,
		successThreshold: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.healthy.Store(true)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, p)
}

// AddLivenessCheck registers a liveness probe.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc, opts ...ProbeOption) {
	h.Add(Liveness, name, timeout, check, opts...)
}

// AddReadinessCheck registers a readiness probe.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc, opts ...ProbeOption) {
	h.Add(Readiness, name, timeout, check, opts...)
}

// Start runs every registered probe each interval until Stop or ctx ends.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append([]*probe(nil), h.probes...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// Stop halts the probe goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness switch.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the switch is on and all readiness probes pass.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(Readiness)) == 0
}

func (h *Health) failures(kind Kind) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string)
	for _, p := range h.probes {
		if p.kind != kind {
			continue
		}
		if msg, failed := p.failure(); failed {
			out[p.name] = msg
		}
	}
	return out
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(Liveness))
}

// ReadyEndpoint serves /readyz. It fails while the readiness switch is off.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(Readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// writeStatus writes {"status":"ok"} or 503 with
// {"status":"unhealthy","checks":{name: error}}.
func writeStatus(w http.ResponseWriter, failures map[string]string) {
	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusServiceUnavailable
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		if status == http.StatusOK {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
