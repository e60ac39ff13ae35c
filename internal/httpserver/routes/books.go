package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/httpserver/handlers"
	"github.com/shelfmark/shelfmark/internal/httpserver/mw"
)

func init() { Register(registerBooks) }

func registerBooks(r chi.Router, d deps.Deps) {
	// Identity is optional here; the detail view renders its
	// unauthenticated state instead of rejecting the request.
	r.With(mw.OptionalUser(d.Identity, d.Logger)).Get("/api/books/{id}", handlers.Book(d))
}
