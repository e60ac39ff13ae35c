package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shelfmark/shelfmark/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the API's error contract. Unknown
// errors read as a store failure; the handler logs the detail, the client
// only sees the class.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	case errors.Is(err, domain.ErrBookmarkRequired):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "bookmark_required"})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_status"})
	case errors.Is(err, domain.ErrItemUnavailable):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item_unavailable"})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "store_unavailable"})
	}
}
