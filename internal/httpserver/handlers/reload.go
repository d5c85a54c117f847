package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

type reloadResponse struct {
	Catalog bool `json:"catalog"`
	Profile bool `json:"profile"`
}

// Reload triggers a manual reload of the device profile and the catalog.
// The profile reloader re-filters the catalog itself, so a busy catalog
// trigger alone is not an error.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := reloadResponse{
			Profile: trigger(d, d.ProfileReloadTrigger, "profile", r),
			Catalog: trigger(d, d.ReloadTrigger, "catalog", r),
		}

		if resp.Catalog || resp.Profile {
			writeJSON(w, http.StatusAccepted, resp)
			return
		}
		writeJSON(w, http.StatusTooManyRequests, resp)
	}
}

func trigger(d deps.Deps, ch chan struct{}, name string, r *http.Request) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("source", name),
			logger.String("remote_ip", r.RemoteAddr))
		return true
	default:
		d.Logger.Warn("reload already in progress",
			logger.String("source", name),
			logger.String("remote_ip", r.RemoteAddr))
		return false
	}
}
