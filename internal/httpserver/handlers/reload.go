package handlers

import (
	"net/http"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// Reload triggers a manual reload of the featured shelves and flushes the
// search result cache.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featuredTriggered := false
		if d.FeaturedReloadTrigger != nil {
			select {
			case d.FeaturedReloadTrigger <- struct{}{}:
				featuredTriggered = true
				d.Logger.Info("manual featured reload triggered via endpoint",
					logger.String("remote_ip", r.RemoteAddr))
			default:
				d.Logger.Warn("featured reload already in progress",
					logger.String("remote_ip", r.RemoteAddr))
			}
		}

		if err := d.Store.FlushSearchCache(r.Context()); err != nil {
			d.Logger.Warn("failed to flush search cache",
				logger.Error(err))
		}

		if featuredTriggered || d.FeaturedReloadTrigger == nil {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("reload triggered\n"))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("reload already in progress, please wait\n"))
	}
}
