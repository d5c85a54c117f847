package domain

import "github.com/MrSnakeDoc/linkjump/internal/logger"

// AppResult groups the links returned for one app.
type AppResult struct {
	AppName           string  `json:"app_name"`
	PackageName       string  `json:"app_store_id"`
	IconURL           string  `json:"app_icon_url"`
	RankingHint       string  `json:"ranking_hint"`
	Score             float64 `json:"score"`
	DeepviewExtraText string  `json:"deepview_extra_text"`
	Links             []*Link `json:"deep_links"`
}

// IsAd reports whether the app is featured content.
func (a *AppResult) IsAd() bool {
	return isFeatured(a.RankingHint)
}

// Info returns the context its links were parsed under.
func (a *AppResult) Info() AppInfo {
	return AppInfo{
		Name:              a.AppName,
		PackageName:       a.PackageName,
		IconURL:           a.IconURL,
		DeepviewExtraText: a.DeepviewExtraText,
	}
}

// OpenApp launches the app's main entry point, falling back to its store
// listing when fallbackToStore is set.
func (a *AppResult) OpenApp(env *Env, fallbackToStore bool) error {
	opened := env.guard("open_app", func() bool {
		if entry, ok := env.launchEntry(a.PackageName); ok && env.launch(entry) {
			return true
		}
		return fallbackToStore && env.openStoreListing(a.PackageName)
	})
	if opened {
		return nil
	}
	env.log().Info("unable to open app", logger.String("package", a.PackageName))
	return &RoutingError{Code: ErrCodeUnableToOpenApp}
}
