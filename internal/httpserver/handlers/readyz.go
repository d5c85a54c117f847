package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Device  string `json:"device,omitempty"`
	Catalog bool   `json:"catalog_loaded"`
}

// Readyz is ready once a catalog has been loaded for the current device.
// Redis is not required: the index is the serving copy.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Catalog: !d.MemoryIndex.GetLastReload().IsZero(),
		}
		if d.Simulator != nil {
			resp.Device = d.Simulator.Device().Name
		}
		resp.Ready = resp.Catalog && d.Simulator != nil

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
