package domain

import (
	"encoding/json"
	"errors"
	"sync"
)

var errFakeLaunch = errors.New("no activity found")

// fakePlatform records every call made by the resolution core.
type fakePlatform struct {
	mu sync.Mutex

	installed  map[string]bool
	shortcuts  bool
	canResolve func(Action) bool
	canLaunch  func(Action) bool
	entries    map[string]Action
	storeOK    bool
	panicOps   map[string]bool

	resolved   []Action
	launched   []Action // successful launches only
	failed     []Action
	storeCalls []string
}

func newFakePlatform(installed ...string) *fakePlatform {
	p := &fakePlatform{
		installed: map[string]bool{},
		entries:   map[string]Action{},
		panicOps:  map[string]bool{},
	}
	for _, pkg := range installed {
		p.installed[pkg] = true
	}
	return p
}

func (p *fakePlatform) maybePanic(op string) {
	if p.panicOps[op] {
		panic("fake platform: " + op)
	}
}

func (p *fakePlatform) IsInstalled(pkg string) bool {
	p.maybePanic("is_installed")
	return p.installed[pkg]
}

func (p *fakePlatform) ResolveAction(a Action) bool {
	p.maybePanic("resolve")
	p.mu.Lock()
	p.resolved = append(p.resolved, a)
	p.mu.Unlock()
	return p.canResolve != nil && p.canResolve(a)
}

func (p *fakePlatform) Launch(a Action) error {
	p.maybePanic("launch")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.canLaunch != nil && p.canLaunch(a) {
		p.launched = append(p.launched, a)
		return nil
	}
	p.failed = append(p.failed, a)
	return errFakeLaunch
}

func (p *fakePlatform) LaunchEntry(pkg string) (Action, bool) {
	p.maybePanic("launch_entry")
	a, ok := p.entries[pkg]
	return a, ok
}

func (p *fakePlatform) OpenStoreListing(pkg string) error {
	p.maybePanic("store")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeCalls = append(p.storeCalls, pkg)
	if !p.storeOK {
		return errors.New("store unavailable")
	}
	return nil
}

func (p *fakePlatform) SupportsShortcuts() bool {
	return p.shortcuts
}

// fakeShortcuts accepts the ids it knows, keyed by package.
type fakeShortcuts struct {
	valid    map[string]string // id -> package
	launches []string
}

func (s *fakeShortcuts) ValidateShortcut(id, pkg string) bool {
	return s.valid[id] == pkg
}

func (s *fakeShortcuts) LaunchShortcut(id, pkg string) error {
	if s.valid[id] != pkg {
		return errors.New("unknown shortcut")
	}
	s.launches = append(s.launches, pkg+"/"+id)
	return nil
}

type fakePresenter struct {
	previews []Preview
	children [][]Handler
	err      error
}

func (p *fakePresenter) PresentPreview(pv Preview, children []Handler) error {
	p.previews = append(p.previews, pv)
	p.children = append(p.children, children)
	return p.err
}

type fakeTracker struct {
	urls []string
}

func (t *fakeTracker) TrackClick(url string) { t.urls = append(t.urls, url) }

// probe is a handler with fixed answers that logs the calls it receives.
type probe struct {
	name     string
	validate bool
	open     bool
	calls    *[]string
}

func (p *probe) Type() HandlerType { return HandlerType("probe") }

func (p *probe) Validate(_ *Env, _ *Link) bool {
	*p.calls = append(*p.calls, p.name+".validate")
	return p.validate
}

func (p *probe) Open(_ *Env, _ *Link) bool {
	*p.calls = append(*p.calls, p.name+".open")
	return p.open
}

func (p *probe) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"@type": "probe", "name": p.name})
}

func (p *probe) sealed() {}

func launchAll(Action) bool  { return true }
func launchNone(Action) bool { return false }
