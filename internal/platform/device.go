package platform

import (
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

// App is one installed package as the simulated device sees it.
type App struct {
	Package    string
	Launchable bool
	// Browser apps handle every http(s) link.
	Browser   bool
	Schemes   []string
	Hosts     []string // "*.example.com" matches any subdomain
	Actions   []string
	Shortcuts []string
	// Broken apps resolve normally but fail every launch.
	Broken bool
}

// Device is an immutable snapshot of a simulated device.
type Device struct {
	Name               string
	SupportsShortcuts  bool
	AutoAcceptPreviews bool

	apps  []App
	byPkg map[string]int
}

// NewDevice builds a device from its installed apps. Later duplicates of a
// package replace earlier ones.
func NewDevice(name string, apps []App) *Device {
	d := &Device{
		Name:  name,
		byPkg: make(map[string]int, len(apps)),
	}
	for _, a := range apps {
		if a.Package == "" {
			continue
		}
		if i, ok := d.byPkg[a.Package]; ok {
			d.apps[i] = a
			continue
		}
		d.byPkg[a.Package] = len(d.apps)
		d.apps = append(d.apps, a)
	}
	return d
}

// Apps returns the installed apps in profile order.
func (d *Device) Apps() []App {
	return append([]App(nil), d.apps...)
}

// App returns the installed app for pkg.
func (d *Device) App(pkg string) (App, bool) {
	i, ok := d.byPkg[pkg]
	if !ok {
		return App{}, false
	}
	return d.apps[i], true
}

// IsInstalled reports whether pkg is installed.
func (d *Device) IsInstalled(pkg string) bool {
	_, ok := d.byPkg[pkg]
	return ok
}

// Match returns the app that would handle a, or false when no activity does.
// An explicit package restricts the match to that package. Otherwise the
// first matching app in profile order wins, with browsers considered last.
func (d *Device) Match(a domain.Action) (App, bool) {
	if a.Package != "" {
		app, ok := d.App(a.Package)
		if !ok || !app.handles(a) {
			return App{}, false
		}
		return app, true
	}

	if pkg, ok := appSchemePackage(a.Data); ok {
		if app, installed := d.App(pkg); installed {
			return app, true
		}
		if store, installed := d.App(domain.StorePackage); installed {
			return store, true
		}
		return App{}, false
	}

	var browser *App
	for i := range d.apps {
		app := d.apps[i]
		if !app.handles(a) {
			continue
		}
		if app.Browser && !app.handlesSpecifically(a) {
			if browser == nil {
				browser = &d.apps[i]
			}
			continue
		}
		return app, true
	}
	if browser != nil {
		return *browser, true
	}
	return App{}, false
}

func (app App) handles(a domain.Action) bool {
	if app.handlesSpecifically(a) {
		return true
	}
	if a.Name != domain.ActionView {
		return false
	}
	scheme := strings.ToLower(schemeOf(a.Data))
	return app.Browser && (scheme == "http" || scheme == "https")
}

// handlesSpecifically ignores the browser catch-all.
func (app App) handlesSpecifically(a domain.Action) bool {
	switch a.Name {
	case domain.ActionMain:
		return app.Launchable && a.Package == app.Package
	case domain.ActionView:
		u, err := url.Parse(a.Data)
		if err != nil || u.Scheme == "" {
			return false
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme == domain.AppURIScheme {
			pkg, _ := appSchemePackage(a.Data)
			return pkg == app.Package || app.Package == domain.StorePackage
		}
		if containsFold(app.Schemes, scheme) {
			return true
		}
		if scheme == "http" || scheme == "https" {
			return matchesHost(app.Hosts, u.Hostname())
		}
		return false
	default:
		return containsFold(app.Actions, a.Name)
	}
}

// appSchemePackage extracts the package of an android-app:// URI.
func appSchemePackage(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, domain.AppURIScheme) || u.Host == "" {
		return "", false
	}
	return u.Host, true
}

func schemeOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Scheme
}

func matchesHost(patterns []string, host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(p)
		if strings.HasPrefix(p, "*.") {
			suffix := p[1:]
			if strings.HasSuffix(host, suffix) || host == p[2:] {
				return true
			}
			continue
		}
		if host == p {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
