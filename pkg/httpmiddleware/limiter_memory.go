package httpmiddleware

import (
	"context"
	"sync"
	"time"
)

var _ Limiter = (*MemoryLimiter)(nil)

type window struct {
	prev      float64
	curr      float64
	currStart time.Time
}

// MemoryLimiter is an in-process sliding window limiter. The count of the
// previous window is weighted by its overlap with the sliding window.
type MemoryLimiter struct {
	max    int
	period time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryLimiter allows limit requests per period and key.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     limit,
		period:  period,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Limit() int { return l.max }

func (l *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{currStart: now.Truncate(l.period)}
		l.windows[key] = w
	}

	if since := now.Sub(w.currStart); since >= l.period {
		w.prev = w.curr
		if since >= 2*l.period {
			w.prev = 0
		}
		w.curr = 0
		w.currStart = now.Truncate(l.period)
	}

	overlap := max(1-now.Sub(w.currStart).Seconds()/l.period.Seconds(), 0)
	count := w.prev*overlap + w.curr
	d := Decision{ResetAt: w.currStart.Add(l.period)}
	if count >= float64(l.max) {
		return d, nil
	}

	w.curr++
	d.Allowed = true
	d.Remaining = max(int(float64(l.max)-count-1), 0)
	return d, nil
}

// Sweep drops keys idle for two periods.
func (l *MemoryLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.currStart) >= 2*l.period {
			delete(l.windows, key)
		}
	}
}

// Run sweeps idle keys every two periods until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(2 * l.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}
