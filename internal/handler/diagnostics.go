package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/go-faster/jx"
)

const maxErrorText = 50

// Diagnostics reports store connectivity and up to ten collection names.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	st := h.status.Status(r.Context())

	database := "Not Available"
	connection := "Not Connected"
	switch {
	case st.Connected && st.Err == nil:
		database = "Connected & Working"
		connection = "Connected"
	case st.Connected:
		database = "Connected but Error: " + truncate(st.Err.Error(), maxErrorText)
		connection = "Connected"
	case st.Configured && st.Err != nil:
		database = "Error: " + truncate(st.Err.Error(), maxErrorText)
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("backend", func(e *jx.Encoder) { e.Str("Running") })
			e.Field("database", func(e *jx.Encoder) { e.Str(database) })
			e.Field("database_url", func(e *jx.Encoder) { e.Str(setOrNot(st.Configured)) })
			e.Field("database_name", func(e *jx.Encoder) {
				if st.Database == "" {
					e.Null()
					return
				}
				e.Str(st.Database)
			})
			e.Field("driver", func(e *jx.Encoder) { e.Str(st.Backend) })
			e.Field("connection_status", func(e *jx.Encoder) { e.Str(connection) })
			e.Field("collections", func(e *jx.Encoder) { encodeStrings(e, st.Collections) })
		})
	})
}

func setOrNot(ok bool) string {
	if ok {
		return "Set"
	}
	return "Not Set"
}

// truncate keeps at most n bytes of s without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
