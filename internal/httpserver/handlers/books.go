package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/detail"
	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/identity"
)

// Book serves the detail view for one catalog item. A fresh view machine
// runs its load sequence per request; the response is its final snapshot, so
// the client renders exactly the state the machine settled in
// (unauthenticated, item-unavailable or ready with annotations).
func Book(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "id")

		uid := ""
		if user := identity.UserFrom(r.Context()); user != nil {
			uid = user.ID
		}

		m := detail.NewMachine(d.Bookmarks, d.Catalog)
		m.Load(r.Context(), uid, bookID, nil)

		snap := m.Snapshot()
		switch snap.State {
		case detail.StateUnauthenticated:
			writeJSON(w, http.StatusUnauthorized, snap)
		case detail.StateItemUnavailable:
			writeJSON(w, http.StatusNotFound, snap)
		default:
			writeJSON(w, http.StatusOK, snap)
		}
	}
}
