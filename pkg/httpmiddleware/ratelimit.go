package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Decision, error)
	Limit() int
}

// RateLimit rejects requests over the limiter's quota with 429 and a
// {"code","message"} body. Every response carries the X-RateLimit-* headers.
// Limiter failures let the request through.
func RateLimit(l Limiter, keyFunc func(*http.Request) string) Middleware {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			d, err := l.Allow(r.Context(), keyFunc(r), now)
			if err != nil {
				zctx.From(r.Context()).Warn("Rate limiter failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := max(d.ResetAt.Sub(now), 0)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				writeTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter) {
	writeErrorBody(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Connection", "close")
	writeErrorBody(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// writeErrorBody writes the API error shape {"code","message"}.
func writeErrorBody(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// ClientIP keys requests by the first X-Forwarded-For address, then
// X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
