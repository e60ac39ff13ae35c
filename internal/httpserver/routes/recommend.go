package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/httpserver/handlers"
	"github.com/shelfmark/shelfmark/internal/httpserver/mw"
)

func init() { Register(registerRecommend) }

func registerRecommend(r chi.Router, d deps.Deps) {
	r.With(
		mw.RequireUser(d.Identity, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RecommendBurst,
			RefillPerIPPerMin: d.RecommendPerMin,
			TrustProxy:        d.TrustProxy,
		}),
	).Post("/api/recommendations", handlers.Recommend(d))
}
