package handlers

import (
	"net/http"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
)

type featuredResponse struct {
	Shelves []*domain.Shelf `json:"shelves"`
}

// Featured serves the curated landing-page shelves from the in-memory index.
func Featured(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Featured == nil {
			writeJSON(w, http.StatusOK, featuredResponse{Shelves: []*domain.Shelf{}})
			return
		}
		shelves := d.Featured.Shelves()
		if shelves == nil {
			shelves = []*domain.Shelf{}
		}
		writeJSON(w, http.StatusOK, featuredResponse{Shelves: shelves})
	}
}
