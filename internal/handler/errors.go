package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

// errBadRequest marks request bodies that are not valid JSON for the
// expected shape.
var errBadRequest = errors.New("malformed request body")

// statusOf maps domain errors to HTTP status codes. Integrity and
// persistence failures fall through to 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docstore.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageOf returns the client-facing message for err. Internal failures
// are not described.
func messageOf(err error, status int) string {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return "Product not found"
	case errors.Is(err, docstore.ErrStoreUnavailable):
		return "Database not available"
	case status >= http.StatusInternalServerError:
		return http.StatusText(status)
	default:
		return err.Error()
	}
}

// writeError logs err and writes it as {"code","message"}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		lg.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	msg := messageOf(err, status)
	writeJSON(r.Context(), w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}
