package platform

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
)

var (
	// ErrNoActivity is returned when no installed app handles an action.
	ErrNoActivity = errors.New("no activity found to handle action")
	// ErrStoreUnavailable is returned when the store app is not installed.
	ErrStoreUnavailable = errors.New("store app is not installed")
	// ErrLaunchFailed is returned when the matched app refuses to start.
	ErrLaunchFailed = errors.New("app failed to start")
	// ErrUnknownShortcut is returned for shortcuts the app does not publish.
	ErrUnknownShortcut = errors.New("unknown shortcut")
)

// Simulator holds the current simulated device. The device can be swapped
// at any time; sessions keep the snapshot they were created with.
type Simulator struct {
	mu       sync.RWMutex
	device   *Device
	loadedAt time.Time
}

// NewSimulator creates a simulator. A nil device means an empty device.
func NewSimulator(d *Device) *Simulator {
	if d == nil {
		d = NewDevice("empty", nil)
	}
	return &Simulator{device: d, loadedAt: time.Now()}
}

// SetDevice replaces the current device.
func (s *Simulator) SetDevice(d *Device) {
	if d == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = d
	s.loadedAt = time.Now()
}

// Device returns the current device snapshot.
func (s *Simulator) Device() *Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// LoadedAt returns when the current device was installed.
func (s *Simulator) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// SessionOptions tune a single resolution session.
type SessionOptions struct {
	LaunchFlags domain.LaunchFlags
	Tracker     domain.ClickTracker
	Logger      logger.Logger
	// AcceptPreviews opens the children of every presented deep view, as if
	// the user tapped its call to action. The device flag enables it too.
	AcceptPreviews bool
}

// NewSession starts a recording session against the current device.
func (s *Simulator) NewSession(opts SessionOptions) *Session {
	d := s.Device()
	sess := &Session{
		device:         d,
		acceptPreviews: opts.AcceptPreviews || d.AutoAcceptPreviews,
	}
	sess.env = &domain.Env{
		Platform:    sess,
		Shortcuts:   sess,
		Previews:    sess,
		Tracker:     opts.Tracker,
		LaunchFlags: opts.LaunchFlags,
		Logger:      opts.Logger,
	}
	return sess
}

// ─────────────────────────────────────────────────────────────────
// Session
// ─────────────────────────────────────────────────────────────────

// EventKind names a journal entry.
type EventKind string

const (
	EventLaunch   EventKind = "launch"
	EventShortcut EventKind = "shortcut"
	EventStore    EventKind = "store"
	EventPreview  EventKind = "preview"
)

// Event is one thing the session did (or failed to do) on the device.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Package string         `json:"package,omitempty"`
	Action  *domain.Action `json:"action,omitempty"`
	Detail  string         `json:"detail,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Session is a domain.Platform, ShortcutHandler and PreviewPresenter over one
// device snapshot. It records every launch, shortcut, store and preview call.
// A Session is safe for concurrent use.
type Session struct {
	device         *Device
	env            *domain.Env
	acceptPreviews bool

	mu      sync.Mutex
	journal []Event
}

// Env returns the environment that routes every capability to this session.
func (s *Session) Env() *domain.Env { return s.env }

// Device returns the snapshot this session runs against.
func (s *Session) Device() *Device { return s.device }

// Journal returns a copy of the recorded events, empty rather than nil.
func (s *Session) Journal() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.journal...)
}

func (s *Session) record(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, e)
}

func (s *Session) IsInstalled(pkg string) bool {
	return s.device.IsInstalled(pkg)
}

func (s *Session) ResolveAction(a domain.Action) bool {
	_, ok := s.device.Match(a)
	return ok
}

func (s *Session) Launch(a domain.Action) error {
	app, ok := s.device.Match(a)
	if !ok {
		s.record(Event{Kind: EventLaunch, Package: a.Package, Action: &a, Error: ErrNoActivity.Error()})
		return ErrNoActivity
	}
	if app.Broken {
		s.record(Event{Kind: EventLaunch, Package: app.Package, Action: &a, Error: ErrLaunchFailed.Error()})
		return fmt.Errorf("%s: %w", app.Package, ErrLaunchFailed)
	}
	s.record(Event{Kind: EventLaunch, Package: app.Package, Action: &a})
	return nil
}

func (s *Session) LaunchEntry(pkg string) (domain.Action, bool) {
	app, ok := s.device.App(pkg)
	if !ok || !app.Launchable {
		return domain.Action{}, false
	}
	return domain.Action{Name: domain.ActionMain, Package: pkg}, true
}

func (s *Session) OpenStoreListing(pkg string) error {
	if !s.device.IsInstalled(domain.StorePackage) {
		s.record(Event{Kind: EventStore, Package: pkg, Error: ErrStoreUnavailable.Error()})
		return ErrStoreUnavailable
	}
	s.record(Event{Kind: EventStore, Package: pkg, Detail: domain.StoreURLPrefix + pkg})
	return nil
}

func (s *Session) SupportsShortcuts() bool {
	return s.device.SupportsShortcuts
}

func (s *Session) ValidateShortcut(id, pkg string) bool {
	if !s.device.SupportsShortcuts {
		return false
	}
	app, ok := s.device.App(pkg)
	return ok && slices.Contains(app.Shortcuts, id)
}

func (s *Session) LaunchShortcut(id, pkg string) error {
	if !s.ValidateShortcut(id, pkg) {
		s.record(Event{Kind: EventShortcut, Package: pkg, Detail: id, Error: ErrUnknownShortcut.Error()})
		return fmt.Errorf("shortcut %q of %s: %w", id, pkg, ErrUnknownShortcut)
	}
	s.record(Event{Kind: EventShortcut, Package: pkg, Detail: id})
	return nil
}

// PresentPreview records the preview. When previews are accepted, the stashed
// children are opened right away; a preview whose children all fail is still
// reported as presented.
func (s *Session) PresentPreview(p domain.Preview, children []domain.Handler) error {
	pkg := ""
	if p.Target != nil {
		pkg = p.Target.DestinationPackage()
	}
	s.record(Event{Kind: EventPreview, Package: pkg, Detail: p.Title})

	if s.acceptPreviews {
		domain.OpenChildren(s.env, p.Target, children)
	}
	return nil
}
