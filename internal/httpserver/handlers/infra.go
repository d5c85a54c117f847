package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	LinksLoaded *int   `json:"links_loaded,omitempty"`
	AppsLoaded  *int   `json:"apps_loaded,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	Device      string `json:"device,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	RoutingMode string                     `json:"routing_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog":  catalogStatus(d),
			"profile":  profileStatus(d),
			"redis":    checkRedis(r.Context(), d),
			"resolver": {OK: true, Mode: "handler-tree+fallback-chain"},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			RoutingMode: determineRoutingMode(components),
			Components:  components,
		})
	}
}

func formatReload(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func catalogStatus(d deps.Deps) componentStatus {
	links := d.MemoryIndex.Count()
	apps := d.MemoryIndex.AppCount()
	requestID, _ := d.MemoryIndex.GetApps()
	return componentStatus{
		OK:          links > 0,
		LinksLoaded: &links,
		AppsLoaded:  &apps,
		RequestID:   requestID,
		LastReload:  formatReload(d.MemoryIndex.GetLastReload()),
	}
}

func profileStatus(d deps.Deps) componentStatus {
	if d.Simulator == nil {
		return componentStatus{OK: false, Error: "simulator not initialized"}
	}
	device := d.Simulator.Device()
	apps := len(device.Apps())
	return componentStatus{
		OK:         apps > 0,
		AppsLoaded: &apps,
		Device:     device.Name,
		LastReload: formatReload(d.Simulator.LoadedAt()),
	}
}

func determineRoutingMode(components map[string]componentStatus) string {
	// Without links or a device there is nothing to resolve
	if !components["catalog"].OK || !components["profile"].OK {
		return "critical"
	}

	// Redis down = degraded (no click learning, no outcome cache)
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}

	return "simulated"
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "click-learning-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "click-learning-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "click-learning-enabled",
	}
}
