package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/service"
)

type recommendRequest struct {
	Messages []service.Message `json:"messages"`
}

// Recommend turns the conversation history into catalog-backed book
// suggestions. Returns 503 when no model is configured.
func Recommend(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Recommender == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "recommendations_disabled"})
			return
		}

		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing_messages"})
			return
		}

		rec, err := d.Recommender.Recommend(r.Context(), req.Messages)
		if err != nil {
			d.Logger.Error("recommendation failed",
				logger.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "recommendation_failed"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
