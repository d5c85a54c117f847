package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
)

type linkSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	URIScheme string `json:"uri_scheme,omitempty"`
	WebLink   string `json:"web_link,omitempty"`
	Shortcut  string `json:"android_shortcut_id,omitempty"`
	Handler   bool   `json:"has_handler"`
	IsAd      bool   `json:"is_ad"`
}

type appSummary struct {
	AppName     string        `json:"app_name"`
	Package     string        `json:"package"`
	IconURL     string        `json:"icon_url,omitempty"`
	RankingHint string        `json:"ranking_hint,omitempty"`
	Score       float64       `json:"score"`
	IsAd        bool          `json:"is_ad"`
	Installed   bool          `json:"installed"`
	Links       []linkSummary `json:"links"`
}

type appsResponse struct {
	RequestID string       `json:"request_id"`
	Device    string       `json:"device"`
	Apps      []appSummary `json:"apps"`
}

// Apps lists the apps of the current catalog, in response order.
func Apps(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, apps := d.MemoryIndex.GetApps()
		device := d.Simulator.Device()

		resp := appsResponse{
			RequestID: requestID,
			Device:    device.Name,
			Apps:      make([]appSummary, 0, len(apps)),
		}
		for _, app := range apps {
			s := appSummary{
				AppName:     app.AppName,
				Package:     app.PackageName,
				IconURL:     app.IconURL,
				RankingHint: app.RankingHint,
				Score:       app.Score,
				IsAd:        app.IsAd(),
				Installed:   device.IsInstalled(app.PackageName),
				Links:       make([]linkSummary, 0, len(app.Links)),
			}
			for _, l := range app.Links {
				s.Links = append(s.Links, linkSummary{
					ID:        l.EntityID(),
					Name:      l.Name(),
					Type:      l.Type(),
					URIScheme: l.URIScheme(),
					WebLink:   l.WebLink(),
					Shortcut:  l.AndroidShortcutID(),
					Handler:   l.Handler() != nil,
					IsAd:      l.IsAd(),
				})
			}
			resp.Apps = append(resp.Apps, s)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
