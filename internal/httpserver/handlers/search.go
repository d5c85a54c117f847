package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

type scoreBreakdown struct {
	Lexical float64 `json:"lexical"`
	Usage   float64 `json:"usage"`
	Server  float64 `json:"server"`
	Total   float64 `json:"total"`
}

type searchCandidate struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	AppName string         `json:"app_name"`
	Package string         `json:"package"`
	Clicks  int64          `json:"clicks"`
	Score   scoreBreakdown `json:"score"`
	DryRun  domain.Outcome `json:"dry_run"`
}

type searchResponse struct {
	Query      string            `json:"query"`
	Device     string            `json:"device"`
	Fallback   bool              `json:"fallback_to_store"`
	Total      int               `json:"total_matches"`
	Candidates []searchCandidate `json:"candidates"`
}

// Search ranks catalog links for ?q= and dry-runs the top candidates on the
// simulated device. Dry runs never count clicks nor fire tracking URLs.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		fallback := boolParam(r, "fallback", d.FallbackToStore)
		candidates := catalog.Rank(catalog.ParseQuery(query), d.MemoryIndex.GetAllLinks())
		total := len(candidates)

		// Limit candidates to MaxCandidates (top N only)
		if d.MaxCandidates > 0 && len(candidates) > d.MaxCandidates {
			candidates = candidates[:d.MaxCandidates]
		}

		resp := searchResponse{
			Query:      query,
			Device:     d.Simulator.Device().Name,
			Fallback:   fallback,
			Total:      total,
			Candidates: make([]searchCandidate, 0, len(candidates)),
		}

		for _, c := range candidates {
			sess := d.Simulator.NewSession(platform.SessionOptions{
				LaunchFlags: d.LaunchFlags,
				Logger:      d.Logger,
			})
			link := c.Record.Link
			out := link.Resolve(sess.Env(), fallback)

			resp.Candidates = append(resp.Candidates, searchCandidate{
				ID:      c.Record.ID,
				Name:    link.Name(),
				AppName: link.AppName(),
				Package: link.DestinationPackage(),
				Clicks:  c.Record.Clicks,
				Score: scoreBreakdown{
					Lexical: c.LexicalScore,
					Usage:   c.UsageScore,
					Server:  c.ServerScore,
					Total:   c.TotalScore,
				},
				DryRun: out,
			})
		}

		d.Logger.Info("search request",
			logger.String("query", query),
			logger.Int("matches", total),
			logger.Int("dry_runs", len(resp.Candidates)))

		writeJSON(w, http.StatusOK, resp)
	}
}
