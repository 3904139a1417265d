package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// SeedCatalog populates an empty catalog with demo products.
func (h *Handler) SeedCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := h.seed.SeedCatalog(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("seeded", func(e *jx.Encoder) { e.Bool(res.Seeded) })
			if !res.Seeded {
				e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
				return
			}
			e.Field("count", func(e *jx.Encoder) { e.Int(res.Count) })
			e.Field("ids", func(e *jx.Encoder) { encodeStrings(e, res.IDs) })
		})
	})
}
