package handlers

import (
	"net/http"
	"strings"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/logger"
)

type searchResponse struct {
	Query string         `json:"query"`
	Books []*domain.Book `json:"books"`
}

// Search runs a catalog query through the Redis result cache. Cache failures
// degrade to a direct catalog call; the endpoint never fails because the
// cache did.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing_query"})
			return
		}

		if cached, err := d.Store.GetCachedSearch(r.Context(), query); err != nil {
			d.Logger.Warn("search cache read failed",
				logger.Error(err))
		} else if cached != nil {
			writeJSON(w, http.StatusOK, searchResponse{Query: query, Books: cached})
			return
		}

		books, err := d.Catalog.Search(r.Context(), query, d.SearchMaxResult)
		if err != nil {
			d.Logger.Error("catalog search failed",
				logger.String("query", query),
				logger.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "catalog_unavailable"})
			return
		}

		if err := d.Store.CacheSearch(r.Context(), query, books, d.SearchCacheTTL); err != nil {
			d.Logger.Warn("search cache write failed",
				logger.Error(err))
		}

		writeJSON(w, http.StatusOK, searchResponse{Query: query, Books: books})
	}
}
