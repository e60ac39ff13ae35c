package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// StreamBookmarks pushes the user's full bookmark list over SSE after every
// mutation, starting with an immediate snapshot. One event always carries
// the whole ordered list; clients replace state wholesale instead of
// patching.
func StreamBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming_unsupported"})
			return
		}

		sub, err := d.Bookmarks.Watch(r.Context(), uidFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		defer sub.Unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case snapshot, open := <-sub.Snapshots:
				if !open {
					return
				}
				data, err := json.Marshal(listResponse{Bookmarks: snapshot})
				if err != nil {
					d.Logger.Error("failed to encode bookmark snapshot",
						logger.Error(err))
					return
				}
				if _, err := fmt.Fprintf(w, "event: bookmarks\ndata: %s\n\n", data); err != nil {
					return
				}
				flusher.Flush()
			case err := <-sub.Errs:
				d.Logger.Warn("bookmark stream closed on store error",
					logger.Error(err))
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
