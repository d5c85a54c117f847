package domain

import (
	"encoding/json"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

// HandlerType is the "@type" discriminator of a handler payload.
type HandlerType string

const (
	TypeViewAction       HandlerType = "view_intent"
	TypeCustomAction     HandlerType = "intent"
	TypeLaunchAction     HandlerType = "launch_intent"
	TypeShortcut         HandlerType = "shortcut"
	TypeTestInstalled    HandlerType = "test_installed"
	TypeTestNotInstalled HandlerType = "test_not_installed"
	TypeDeepView         HandlerType = "deep_view"
)

// Handler is one strategy for opening a Link.
//
// The set of implementations is closed: ViewAction, CustomAction,
// LaunchAction, Shortcut, TestInstalled, TestNotInstalled and DeepView.
// Validate has no visible side effect and is safe to call repeatedly.
// Open performs the navigation. Neither panics: platform failures and
// panics are reported as false.
type Handler interface {
	Type() HandlerType
	Validate(env *Env, target *Link) bool
	Open(env *Env, target *Link) bool
	json.Marshaler

	sealed()
}

// ─────────────────────────────────────────────────────────────────
// Leaf handlers
// ─────────────────────────────────────────────────────────────────

// ViewAction opens Data, optionally forcing the package that handles it.
type ViewAction struct {
	Data         string
	ForcePackage string
	Extras       map[string]string
}

// CustomAction opens a free-form action name with an optional URI.
type CustomAction struct {
	Action string
	Data   string
	Extras map[string]string
}

// LaunchAction launches the main entry point of the target's destination package.
type LaunchAction struct {
	Extras map[string]string
}

// Shortcut launches an app-defined shortcut through the environment's ShortcutHandler.
type Shortcut struct {
	ID string
}

func (*ViewAction) Type() HandlerType   { return TypeViewAction }
func (*CustomAction) Type() HandlerType { return TypeCustomAction }
func (*LaunchAction) Type() HandlerType { return TypeLaunchAction }
func (*Shortcut) Type() HandlerType     { return TypeShortcut }

func (h *ViewAction) action(_ *Env, _ *Link) (Action, bool) {
	return Action{Name: ActionView, Data: h.Data, Package: h.ForcePackage}, true
}

func (h *CustomAction) action(_ *Env, _ *Link) (Action, bool) {
	return Action{Name: h.Action, Data: h.Data}, true
}

// The launch entry is looked up on every call: the package may have been
// removed since the last validate.
func (h *LaunchAction) action(env *Env, target *Link) (Action, bool) {
	return env.launchEntry(target.DestinationPackage())
}

func (h *ViewAction) Validate(env *Env, target *Link) bool {
	return validateAction(env, target, h.Type(), h.action)
}

func (h *ViewAction) Open(env *Env, target *Link) bool {
	return openAction(env, target, h.Type(), h.Extras, h.action)
}

func (h *CustomAction) Validate(env *Env, target *Link) bool {
	return validateAction(env, target, h.Type(), h.action)
}

func (h *CustomAction) Open(env *Env, target *Link) bool {
	return openAction(env, target, h.Type(), h.Extras, h.action)
}

func (h *LaunchAction) Validate(env *Env, target *Link) bool {
	return validateAction(env, target, h.Type(), h.action)
}

func (h *LaunchAction) Open(env *Env, target *Link) bool {
	return openAction(env, target, h.Type(), h.Extras, h.action)
}

type actionBuilder func(env *Env, target *Link) (Action, bool)

func validateAction(env *Env, target *Link, t HandlerType, build actionBuilder) bool {
	return env.guard(string(t)+".validate", func() bool {
		if target == nil {
			return false
		}
		a, ok := build(env, target)
		return ok && env.resolve(a)
	})
}

func openAction(env *Env, target *Link, t HandlerType, extras map[string]string, build actionBuilder) bool {
	return env.guard(string(t)+".open", func() bool {
		if target == nil {
			return false
		}
		a, ok := build(env, target)
		if !ok {
			env.log().Debug("no action to open",
				logger.String("handler", string(t)),
				logger.String("package", target.DestinationPackage()))
			return false
		}
		a.Extras = mergeExtras(a.Extras, extras)
		return env.launch(a)
	})
}

func mergeExtras(base, extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (h *Shortcut) Validate(env *Env, target *Link) bool {
	return env.guard("shortcut.validate", func() bool {
		return target != nil && env.validateShortcut(h.ID, target.DestinationPackage())
	})
}

func (h *Shortcut) Open(env *Env, target *Link) bool {
	return env.guard("shortcut.open", func() bool {
		return target != nil && env.launchShortcut(h.ID, target.DestinationPackage())
	})
}

// ─────────────────────────────────────────────────────────────────
// Composite handlers
// ─────────────────────────────────────────────────────────────────

// TestInstalled delegates to Children only when Package is installed.
type TestInstalled struct {
	Package  string
	Children []Handler
}

// TestNotInstalled delegates to Children only when Package is not installed.
type TestNotInstalled struct {
	Package  string
	Children []Handler
}

// DeepView validates like any composite but opens a preview instead of its
// children. Empty Title, Description and ImageURL fall back to the target's.
type DeepView struct {
	Title       string
	Description string
	ImageURL    string
	Children    []Handler
}

func (*TestInstalled) Type() HandlerType    { return TypeTestInstalled }
func (*TestNotInstalled) Type() HandlerType { return TypeTestNotInstalled }
func (*DeepView) Type() HandlerType         { return TypeDeepView }

func (h *TestInstalled) Validate(env *Env, target *Link) bool {
	return env.guard("test_installed.validate", func() bool {
		return env.isInstalled(h.Package) && ValidateChildren(env, target, h.Children)
	})
}

func (h *TestInstalled) Open(env *Env, target *Link) bool {
	return env.guard("test_installed.open", func() bool {
		return env.isInstalled(h.Package) && OpenChildren(env, target, h.Children)
	})
}

func (h *TestNotInstalled) Validate(env *Env, target *Link) bool {
	return env.guard("test_not_installed.validate", func() bool {
		return !env.isInstalled(h.Package) && ValidateChildren(env, target, h.Children)
	})
}

func (h *TestNotInstalled) Open(env *Env, target *Link) bool {
	return env.guard("test_not_installed.open", func() bool {
		return !env.isInstalled(h.Package) && OpenChildren(env, target, h.Children)
	})
}

func (h *DeepView) Validate(env *Env, target *Link) bool {
	return env.guard("deep_view.validate", func() bool {
		return ValidateChildren(env, target, h.Children)
	})
}

// Open hands the preview and the unopened children to the environment's
// PreviewPresenter.
func (h *DeepView) Open(env *Env, target *Link) bool {
	return env.guard("deep_view.open", func() bool {
		if target == nil {
			return false
		}
		return env.presentPreview(h.Preview(target), h.Children)
	})
}

// Preview builds the payload shown for target.
func (h *DeepView) Preview(target *Link) Preview {
	return Preview{
		Target:      target,
		Title:       firstNonEmpty(h.Title, target.Name()),
		Description: firstNonEmpty(h.Description, target.Description()),
		ImageURL:    firstNonEmpty(h.ImageURL, target.ImageURL()),
		ExtraText:   target.DeepviewExtraText(),
	}
}

// ValidateChildren reports whether any child validates, trying them in order
// and stopping at the first that does.
func ValidateChildren(env *Env, target *Link, children []Handler) bool {
	for _, child := range children {
		if child.Validate(env, target) {
			return true
		}
	}
	return false
}

// OpenChildren opens the first child that succeeds, in declaration order.
func OpenChildren(env *Env, target *Link, children []Handler) bool {
	for _, child := range children {
		if child.Open(env, target) {
			return true
		}
	}
	return false
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (*ViewAction) sealed()       {}
func (*CustomAction) sealed()     {}
func (*LaunchAction) sealed()     {}
func (*Shortcut) sealed()         {}
func (*TestInstalled) sealed()    {}
func (*TestNotInstalled) sealed() {}
func (*DeepView) sealed()         {}
