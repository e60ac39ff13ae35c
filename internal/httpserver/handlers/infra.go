package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	ShelvesLoaded *int   `json:"shelves_loaded,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	ServiceMode string                     `json:"service_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports per-component health for the ops dashboard.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"redis":           checkRedis(d),
			"featured":        checkFeatured(d),
			"recommendations": checkRecommender(d),
		}

		response := infraResponse{
			ServiceMode: determineServiceMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServiceMode(components map[string]componentStatus) string {
	// Redis carries bookmarks and sessions; without it nothing works.
	if rd, exists := components["redis"]; exists && !rd.OK {
		return "critical"
	}
	if rec, exists := components["recommendations"]; exists && !rec.OK {
		return "degraded"
	}
	return "full"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "bookmarks-unavailable",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "bookmarks-unavailable",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "none",
		Error:  "none",
	}
}

func checkFeatured(d deps.Deps) componentStatus {
	if d.Featured == nil {
		return componentStatus{
			OK:   true,
			Mode: "disabled",
		}
	}

	count := d.Featured.Count()
	lastReload := "never"
	if t := d.Featured.LastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:            count > 0,
		ShelvesLoaded: &count,
		LastReload:    lastReload,
	}
}

func checkRecommender(d deps.Deps) componentStatus {
	if d.Recommender == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "recommendations-unavailable",
			Error:  "no api key configured",
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
