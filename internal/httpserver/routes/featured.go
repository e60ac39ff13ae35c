package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/httpserver/handlers"
)

func init() { Register(registerFeatured) }

func registerFeatured(r chi.Router, d deps.Deps) {
	r.Get("/api/featured", handlers.Featured(d))
}
