package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/logger"
)

type toggleRequest struct {
	Book *domain.Book `json:"book"`
}

type toggleResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

type annotationResponse struct {
	Bookmarked bool          `json:"bookmarked"`
	Memo       string        `json:"memo"`
	Status     domain.Status `json:"status"`
}

type memoRequest struct {
	Memo string `json:"memo"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type listResponse struct {
	Bookmarks []*domain.Bookmark `json:"bookmarks"`
}

func uidFrom(r *http.Request) string {
	if user := identity.UserFrom(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

// ToggleBookmark flips bookmark existence for the authenticated user. The
// body carries the catalog item's display fields so a created record can be
// rendered without a catalog round trip.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookID")

		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Book == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing_book"})
			return
		}
		if req.Book.ID != bookID {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "book_id_mismatch"})
			return
		}

		bookmarked, err := d.Bookmarks.Toggle(r.Context(), uidFrom(r), req.Book)
		if err != nil {
			d.Logger.Error("bookmark toggle failed",
				logger.String("book_id", bookID),
				logger.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Bookmarked: bookmarked})
	}
}

// ListBookmarks returns the user's collection ordered by last update,
// newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, err := d.Bookmarks.List(r.Context(), uidFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Bookmarks: bookmarks})
	}
}

// Annotation returns the memo and status of one bookmark. For a book that is
// not bookmarked it reports the defaults rather than failing; reads are
// always safe.
func Annotation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := uidFrom(r)
		bookID := chi.URLParam(r, "bookID")

		bookmarked, err := d.Bookmarks.IsBookmarked(r.Context(), uid, bookID)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := annotationResponse{Bookmarked: bookmarked, Status: domain.StatusTodo}
		if bookmarked {
			if resp.Memo, err = d.Bookmarks.Memo(r.Context(), uid, bookID); err != nil {
				writeError(w, err)
				return
			}
			status, err := d.Bookmarks.Status(r.Context(), uid, bookID)
			if err != nil {
				writeError(w, err)
				return
			}
			if status != nil {
				resp.Status = *status
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SaveMemo overwrites the memo of an existing bookmark.
func SaveMemo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body"})
			return
		}

		bookID := chi.URLParam(r, "bookID")
		if err := d.Bookmarks.SaveMemo(r.Context(), uidFrom(r), bookID, req.Memo); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetStatus updates the reading status of an existing bookmark.
func SetStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body"})
			return
		}

		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			writeError(w, err)
			return
		}

		bookID := chi.URLParam(r, "bookID")
		if err := d.Bookmarks.SetStatus(r.Context(), uidFrom(r), bookID, status); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
