package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// ListProducts returns all products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	views, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) { encodeProducts(e, views) })
}

// ListFeaturedProducts returns featured products.
func (h *Handler) ListFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	views, err := h.catalog.ListFeaturedProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) { encodeProducts(e, views) })
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	v, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, v) })
}

func encodeProducts(e *jx.Encoder, views []catalog.ProductView) {
	e.Arr(func(e *jx.Encoder) {
		for i := range views {
			encodeProduct(e, &views[i])
		}
	})
}

func encodeProduct(e *jx.Encoder, v *catalog.ProductView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(v.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(v.Title) })
		e.Field("description", func(e *jx.Encoder) { encodeOptStr(e, v.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(v.Price) })
		e.Field("category", func(e *jx.Encoder) { e.Str(v.Category) })
		e.Field("images", func(e *jx.Encoder) { encodeStrings(e, v.Images) })
		e.Field("thumbnail", func(e *jx.Encoder) { encodeOptStr(e, v.Thumbnail) })
		e.Field("tags", func(e *jx.Encoder) { encodeStrings(e, v.Tags) })
		e.Field("specs", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for k, val := range v.Specs {
					e.Field(k, func(e *jx.Encoder) { e.Str(val) })
				}
			})
		})
		e.Field("in_stock", func(e *jx.Encoder) { e.Bool(v.InStock) })
		e.Field("inventory", func(e *jx.Encoder) { e.Int(v.Inventory) })
		e.Field("featured", func(e *jx.Encoder) { e.Bool(v.Featured) })
		e.Field("rating", func(e *jx.Encoder) { e.Float64(v.Rating) })
	})
}

func encodeOptStr(e *jx.Encoder, s *string) {
	if s == nil {
		e.Null()
		return
	}
	e.Str(*s)
}

func encodeStrings(e *jx.Encoder, ss []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, s := range ss {
			e.Str(s)
		}
	})
}
