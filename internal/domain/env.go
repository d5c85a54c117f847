package domain

import (
	"fmt"
	"net/url"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

const (
	ActionView = "android.intent.action.VIEW"
	ActionMain = "android.intent.action.MAIN"
)

// LaunchFlags are stamped onto every action handed to the platform.
type LaunchFlags int

// Action describes a navigation request for the platform to carry out.
type Action struct {
	Name    string            `json:"action"`
	Data    string            `json:"data,omitempty"`
	Package string            `json:"package,omitempty"`
	Extras  map[string]string `json:"extras,omitempty"`
	Flags   LaunchFlags       `json:"flags,omitempty"`
}

// Scheme returns the scheme of Data, or "" when Data is not a URI.
func (a Action) Scheme() string {
	u, err := url.Parse(a.Data)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// Host returns the host of Data, or "".
func (a Action) Host() string {
	u, err := url.Parse(a.Data)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Platform is the host capability surface the resolution core consumes.
// Launch and OpenStoreListing report failures as errors; the core turns
// both errors and panics into a failed attempt.
type Platform interface {
	IsInstalled(pkg string) bool
	ResolveAction(a Action) bool
	Launch(a Action) error
	LaunchEntry(pkg string) (Action, bool)
	OpenStoreListing(pkg string) error
	SupportsShortcuts() bool
}

// ShortcutHandler validates and launches app-defined shortcuts.
type ShortcutHandler interface {
	ValidateShortcut(id, pkg string) bool
	LaunchShortcut(id, pkg string) error
}

// Preview is the payload of a deep view surface.
type Preview struct {
	Target      *Link
	Title       string
	Description string
	ImageURL    string
	ExtraText   string
}

// PreviewPresenter shows a deep view. The children are handed over unopened;
// the presenter opens them later with OpenChildren when the user acts.
type PreviewPresenter interface {
	PresentPreview(p Preview, children []Handler) error
}

// ClickTracker sends click notifications. TrackClick must not block.
type ClickTracker interface {
	TrackClick(url string)
}

// Env bundles the capabilities passed to every validate and open call.
// Only Platform is required; a nil Shortcuts or Previews makes the matching
// handlers fail, a nil Tracker disables click tracking.
type Env struct {
	Platform    Platform
	Shortcuts   ShortcutHandler
	Previews    PreviewPresenter
	Tracker     ClickTracker
	LaunchFlags LaunchFlags
	Logger      logger.Logger
}

func (e *Env) log() logger.Logger {
	if e == nil || e.Logger == nil {
		return logger.NewNop()
	}
	return e.Logger
}

func (e *Env) ready() bool {
	return e != nil && e.Platform != nil
}

func (e *Env) isInstalled(pkg string) bool {
	return e.ready() && pkg != "" && e.Platform.IsInstalled(pkg)
}

func (e *Env) resolve(a Action) bool {
	return e.ready() && e.Platform.ResolveAction(a)
}

func (e *Env) launch(a Action) bool {
	if !e.ready() {
		return false
	}
	a.Flags = e.LaunchFlags
	if err := e.Platform.Launch(a); err != nil {
		e.log().Debug("launch failed",
			logger.String("action", a.Name),
			logger.String("data", a.Data),
			logger.String("package", a.Package),
			logger.Error(err))
		return false
	}
	return true
}

func (e *Env) launchEntry(pkg string) (Action, bool) {
	if !e.ready() || pkg == "" {
		return Action{}, false
	}
	return e.Platform.LaunchEntry(pkg)
}

func (e *Env) openStoreListing(pkg string) bool {
	if !e.ready() || pkg == "" {
		return false
	}
	if err := e.Platform.OpenStoreListing(pkg); err != nil {
		e.log().Debug("store listing failed", logger.String("package", pkg), logger.Error(err))
		return false
	}
	return true
}

func (e *Env) supportsShortcuts() bool {
	return e.ready() && e.Platform.SupportsShortcuts()
}

func (e *Env) validateShortcut(id, pkg string) bool {
	return e != nil && e.Shortcuts != nil && e.Shortcuts.ValidateShortcut(id, pkg)
}

func (e *Env) launchShortcut(id, pkg string) bool {
	if e == nil || e.Shortcuts == nil {
		return false
	}
	if err := e.Shortcuts.LaunchShortcut(id, pkg); err != nil {
		e.log().Debug("shortcut launch failed",
			logger.String("shortcut_id", id),
			logger.String("package", pkg),
			logger.Error(err))
		return false
	}
	return true
}

func (e *Env) presentPreview(p Preview, children []Handler) bool {
	if e == nil || e.Previews == nil {
		return false
	}
	if err := e.Previews.PresentPreview(p, children); err != nil {
		e.log().Debug("preview presentation failed", logger.Error(err))
		return false
	}
	return true
}

// guard runs fn and converts a panic into false.
func (e *Env) guard(op string, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log().Warn("recovered panic from platform capability",
				logger.String("op", op),
				logger.String("panic", fmt.Sprint(r)))
			ok = false
		}
	}()
	return fn()
}

// IsInstalled asks the platform whether pkg is installed, treating a panic as "no".
func (e *Env) IsInstalled(pkg string) bool {
	return e.guard("is_installed", func() bool { return e.isInstalled(pkg) })
}

// ValidateShortcut asks the shortcut handler whether id is launchable for pkg,
// treating a panic as "no".
func (e *Env) ValidateShortcut(id, pkg string) bool {
	return e.guard("validate_shortcut", func() bool { return e.validateShortcut(id, pkg) })
}
