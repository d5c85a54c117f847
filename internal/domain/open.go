package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

// Strategy identifies one step of the resolution chain.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyHandlerTree
	StrategyShortcut
	StrategyURIScheme
	StrategyWebLinkForced
	StrategyWebLink
	StrategyStore
)

func (s Strategy) String() string {
	switch s {
	case StrategyHandlerTree:
		return "handler_tree"
	case StrategyShortcut:
		return "shortcut"
	case StrategyURIScheme:
		return "uri_scheme"
	case StrategyWebLinkForced:
		return "web_link_forced"
	case StrategyWebLink:
		return "web_link"
	case StrategyStore:
		return "store"
	default:
		return "none"
	}
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	for s := StrategyNone; s <= StrategyStore; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return StrategyNone, fmt.Errorf("unknown strategy %q", name)
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Outcome is the result of one resolution attempt.
// Opened and Code are mutually exclusive: a failed attempt always carries
// ErrCodeUnableToOpenApp.
type Outcome struct {
	Opened    bool       `json:"opened"`
	Strategy  Strategy   `json:"strategy"`  // the strategy that succeeded, StrategyNone on failure
	Attempted []Strategy `json:"attempted"` // strategies whose precondition held, in the order they ran
	Code      string     `json:"code,omitempty"`
}

// MarshalJSON writes strategies by name and always emits attempted as a list.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	p := plain(o)
	if p.Attempted == nil {
		p.Attempted = []Strategy{}
	}
	return json.Marshal(p)
}

// Err returns nil for a successful outcome and a *RoutingError otherwise.
func (o Outcome) Err() error {
	if o.Opened {
		return nil
	}
	return &RoutingError{Code: o.Code}
}

type step struct {
	strategy Strategy
	enabled  bool
	run      func() bool
}

// Open runs the resolution chain for l. It returns nil on success and a
// *RoutingError carrying ErrCodeUnableToOpenApp when nothing could be opened.
func (l *Link) Open(env *Env, fallbackToStore bool) error {
	return l.Resolve(env, fallbackToStore).Err()
}

// Resolve sends the click notification and then tries, in order, the
// attached handler tree, the platform shortcut, the URI scheme, the web link
// with a forced package, the web link unforced, and (when fallbackToStore is
// set) the store listing. It stops at the first strategy that opens. A
// strategy whose precondition does not hold is skipped; one that fails or
// panics only ends that strategy.
func (l *Link) Resolve(env *Env, fallbackToStore bool) Outcome {
	log := env.log().With(
		logger.String("entity_id", l.entityID),
		logger.String("package", l.destinationPackage))

	l.RegisterClick(env)

	pkg := l.destinationPackage
	hasApp := env.IsInstalled(pkg)
	hasStore := env.IsInstalled(StorePackage)

	steps := []step{
		{
			strategy: StrategyHandlerTree,
			enabled:  l.handler != nil,
			run:      func() bool { return l.handler.Validate(env, l) && l.handler.Open(env, l) },
		},
		{
			strategy: StrategyShortcut,
			enabled:  hasApp && l.androidShortcutID != "" && env.guard("supports_shortcuts", env.supportsShortcuts),
			run:      func() bool { return env.launchShortcut(l.androidShortcutID, pkg) },
		},
		{
			strategy: StrategyURIScheme,
			enabled:  l.uriScheme != "" && (hasApp || isAppSchemeURI(l.uriScheme)),
			run:      func() bool { return l.openURIScheme(env) },
		},
		{
			strategy: StrategyWebLinkForced,
			enabled:  l.WebLink() != "",
			run:      func() bool { return l.openWebLink(env, hasApp, hasStore, true) },
		},
		{
			strategy: StrategyWebLink,
			enabled:  l.WebLink() != "",
			run:      func() bool { return l.openWebLink(env, hasApp, hasStore, false) },
		},
		{
			strategy: StrategyStore,
			enabled:  fallbackToStore && pkg != "",
			run:      func() bool { return env.openStoreListing(pkg) },
		},
	}

	out := Outcome{}
	for _, s := range steps {
		if !s.enabled {
			log.Debug("strategy skipped", logger.String("strategy", s.strategy.String()))
			continue
		}
		out.Attempted = append(out.Attempted, s.strategy)
		if env.guard(s.strategy.String(), s.run) {
			out.Opened = true
			out.Strategy = s.strategy
			log.Info("link opened", logger.String("strategy", s.strategy.String()))
			return out
		}
		log.Debug("strategy failed", logger.String("strategy", s.strategy.String()))
	}

	out.Code = ErrCodeUnableToOpenApp
	log.Info("unable to open link",
		logger.Int("attempted", len(out.Attempted)),
		logger.Bool("fallback_to_store", fallbackToStore))
	return out
}

// RegisterClick fires the click notification, if the link has a tracking URL.
// It never blocks and its failure is never observed.
func (l *Link) RegisterClick(env *Env) {
	if l.clickTrackingURL == "" || env == nil || env.Tracker == nil {
		return
	}
	env.guard("track_click", func() bool {
		env.Tracker.TrackClick(l.clickTrackingURL)
		return true
	})
}

// openURIScheme forces the destination package unless the URI is an
// app-scheme URI, which names its package itself and is left to the platform.
func (l *Link) openURIScheme(env *Env) bool {
	if _, err := url.Parse(l.uriScheme); err != nil {
		return false
	}
	a := Action{Name: ActionView, Data: l.uriScheme}
	if !isAppSchemeURI(l.uriScheme) {
		a.Package = l.destinationPackage
	}
	return env.launch(a)
}

// openWebLink opens the web link. When forcePackage is set, store links go to
// the store app (if installed) and other links go to the destination app
// (if installed); otherwise nothing is forced.
func (l *Link) openWebLink(env *Env, hasApp, hasStore, forcePackage bool) bool {
	web := l.WebLink()
	u, err := url.Parse(web)
	if err != nil {
		return false
	}
	a := Action{Name: ActionView, Data: web}
	if forcePackage {
		isStoreLink := strings.EqualFold(u.Hostname(), StoreHost)
		switch {
		case isStoreLink && hasStore:
			a.Package = StorePackage
		case !isStoreLink && hasApp:
			a.Package = l.destinationPackage
		}
	}
	return env.launch(a)
}

func isAppSchemeURI(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.EqualFold(u.Scheme, AppURIScheme)
}
