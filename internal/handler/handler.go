// Package handler exposes the catalog, checkout and seeding services over
// HTTP using chi routing and jx JSON encoding.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/seed"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// StatusReporter reports store connectivity for the diagnostics endpoint.
type StatusReporter interface {
	Status(ctx context.Context) docstore.Status
}

// Handler serves the storefront API.
type Handler struct {
	catalog  *catalog.Service
	checkout *checkout.Service
	seed     *seed.Service
	status   StatusReporter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	catalogSvc *catalog.Service,
	checkoutSvc *checkout.Service,
	seedSvc *seed.Service,
	status StatusReporter,
) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		checkout: checkoutSvc,
		seed:     seedSvc,
		status:   status,
	}
}

// Register mounts the API routes on r. Write middlewares wrap only the
// routes that create documents.
func (h *Handler) Register(r chi.Router, write ...func(http.Handler) http.Handler) {
	r.Get("/", h.Root)
	r.Get("/test", h.Diagnostics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/featured", h.ListFeaturedProducts)
		r.Get("/products/{id}", h.GetProduct)

		w := r.With(write...)
		w.Post("/seed", h.SeedCatalog)
		w.Post("/checkout", h.Checkout)
	})
}

// Root reports that the service is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("E-Commerce API running") })
		})
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(ctx).Debug("Write response failed", zap.Error(err))
	}
}
