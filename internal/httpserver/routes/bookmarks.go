package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/httpserver/handlers"
	"github.com/shelfmark/shelfmark/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	auth := r.With(mw.RequireUser(d.Identity, d.Logger))

	auth.Get("/api/bookmarks", handlers.ListBookmarks(d))
	auth.Get("/api/bookmarks/stream", handlers.StreamBookmarks(d))
	auth.Post("/api/bookmarks/{bookID}/toggle", handlers.ToggleBookmark(d))
	auth.Get("/api/bookmarks/{bookID}/annotation", handlers.Annotation(d))
	auth.Put("/api/bookmarks/{bookID}/memo", handlers.SaveMemo(d))
	auth.Put("/api/bookmarks/{bookID}/status", handlers.SetStatus(d))
}
