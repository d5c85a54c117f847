package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

// DefaultParseConcurrency bounds the apps filtered at once when the caller passes 0.
const DefaultParseConcurrency = 4

// SearchResult is a parsed and device-filtered search response.
type SearchResult struct {
	RequestID      string              `json:"request_id"`
	CorrectedQuery string              `json:"search_query_string,omitempty"`
	Success        bool                `json:"success"`
	Apps           []*domain.AppResult `json:"results"`
}

// Links returns every link of every app, in result order.
func (r *SearchResult) Links() []*domain.Link {
	var out []*domain.Link
	for _, app := range r.Apps {
		out = append(out, app.Links...)
	}
	return out
}

type rawResponse struct {
	RequestID      string            `json:"request_id"`
	Results        []json.RawMessage `json:"results"`
	Success        bool              `json:"success"`
	CorrectedQuery string            `json:"search_query_string"`
}

type rawApp struct {
	AppName               string            `json:"app_name"`
	AppStoreID            string            `json:"app_store_id"`
	AppIconURL            string            `json:"app_icon_url"`
	Score                 float64           `json:"score"`
	DeepLinks             []json.RawMessage `json:"deep_links"`
	RankingHint           string            `json:"ranking_hint"`
	NotInstalledMax       *int              `json:"not_installed_max_results"`
	UninstalledMaxResults *int              `json:"uninstalled_max_results"`
	DeepviewExtraText     string            `json:"deepview_extra_text"`
}

func (a rawApp) maxResults() int {
	switch {
	case a.NotInstalledMax != nil:
		return *a.NotInstalledMax
	case a.UninstalledMaxResults != nil:
		return *a.UninstalledMaxResults
	default:
		return math.MaxInt
	}
}

// ParseSearchResponse parses a search response and filters it against the
// device described by env:
//   - links whose shortcut the device cannot launch are dropped;
//   - for apps that are not installed, only links with a web link or an
//     app-scheme URI are kept, up to the app's not-installed maximum;
//   - apps left without links are dropped.
//
// Apps are filtered concurrently, at most concurrency at a time, and keep
// their response order. A response with success=false has no apps. Links
// that fail to parse are skipped and logged.
func ParseSearchResponse(ctx context.Context, data []byte, env *domain.Env, concurrency int) (*SearchResult, error) {
	var raw rawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	res := &SearchResult{
		RequestID:      raw.RequestID,
		CorrectedQuery: raw.CorrectedQuery,
		Success:        raw.Success,
		Apps:           []*domain.AppResult{},
	}
	if !raw.Success || len(raw.Results) == 0 {
		return res, nil
	}

	if concurrency <= 0 {
		concurrency = DefaultParseConcurrency
	}

	log := logger.NewNop()
	if env != nil && env.Logger != nil {
		log = env.Logger
	}

	apps := make([]*domain.AppResult, len(raw.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range raw.Results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			apps[i] = parseApp(item, env, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, app := range apps {
		if app != nil {
			res.Apps = append(res.Apps, app)
		}
	}
	return res, nil
}

// parseApp returns nil for entries that are not objects or end up empty.
func parseApp(item json.RawMessage, env *domain.Env, log logger.Logger) *domain.AppResult {
	var ra rawApp
	if err := json.Unmarshal(item, &ra); err != nil {
		log.Debug("skipping malformed app result", logger.Error(err))
		return nil
	}

	app := &domain.AppResult{
		AppName:           ra.AppName,
		PackageName:       ra.AppStoreID,
		IconURL:           ra.AppIconURL,
		RankingHint:       ra.RankingHint,
		Score:             ra.Score,
		DeepviewExtraText: ra.DeepviewExtraText,
	}
	installed := env.IsInstalled(app.PackageName)
	info := app.Info()

	links := make([]*domain.Link, 0, len(ra.DeepLinks))
	for j, rawLink := range ra.DeepLinks {
		l, err := domain.ParseLink(rawLink, info)
		if err != nil {
			log.Warn("skipping malformed link",
				logger.String("package", app.PackageName),
				logger.Int("index", j),
				logger.Error(err))
			continue
		}
		if keepLink(l, env, installed) {
			links = append(links, l)
		}
	}

	if !installed {
		if limit := max(ra.maxResults(), 0); len(links) > limit {
			links = links[:limit]
		}
	}
	if len(links) == 0 {
		return nil
	}
	app.Links = links
	return app
}

func keepLink(l *domain.Link, env *domain.Env, installed bool) bool {
	if id := l.AndroidShortcutID(); id != "" && !env.ValidateShortcut(id, l.DestinationPackage()) {
		return false
	}
	if installed {
		return true
	}
	hasWeb := l.RawWebLink() != ""
	hasAppURI := strings.HasPrefix(strings.ToLower(l.URIScheme()), domain.AppURIScheme+"://")
	return hasWeb || hasAppURI
}
