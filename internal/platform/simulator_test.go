package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

func testDevice() *Device {
	d := NewDevice("pixel", []App{
		{Package: domain.StorePackage, Launchable: true, Schemes: []string{"market"}, Hosts: []string{"play.google.com"}},
		{Package: "com.android.chrome", Launchable: true, Browser: true},
		{
			Package:    "com.yelp.android",
			Launchable: true,
			Schemes:    []string{"yelp"},
			Hosts:      []string{"*.yelp.com"},
			Actions:    []string{"com.yelp.android.NEARBY"},
			Shortcuts:  []string{"nearby"},
		},
		{Package: "com.broken", Launchable: true, Schemes: []string{"broken"}, Broken: true},
	})
	d.SupportsShortcuts = true
	return d
}

func TestDeviceMatch(t *testing.T) {
	d := testDevice()

	tests := []struct {
		name    string
		action  domain.Action
		wantPkg string
		wantOK  bool
	}{
		{name: "custom scheme", action: domain.Action{Name: domain.ActionView, Data: "yelp:///biz/1"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "scheme is case-insensitive", action: domain.Action{Name: domain.ActionView, Data: "YELP:///biz/1"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "verified host beats browser", action: domain.Action{Name: domain.ActionView, Data: "https://www.yelp.com/biz/1"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "wildcard matches bare domain", action: domain.Action{Name: domain.ActionView, Data: "https://yelp.com/biz/1"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "unknown host goes to browser", action: domain.Action{Name: domain.ActionView, Data: "https://example.com"}, wantPkg: "com.android.chrome", wantOK: true},
		{name: "store link", action: domain.Action{Name: domain.ActionView, Data: domain.StoreURLPrefix + "com.x"}, wantPkg: domain.StorePackage, wantOK: true},
		{name: "forced package that cannot handle", action: domain.Action{Name: domain.ActionView, Data: "https://example.com", Package: "com.yelp.android"}, wantOK: false},
		{name: "forced browser", action: domain.Action{Name: domain.ActionView, Data: "https://www.yelp.com", Package: "com.android.chrome"}, wantPkg: "com.android.chrome", wantOK: true},
		{name: "forced package not installed", action: domain.Action{Name: domain.ActionView, Data: "yelp:///x", Package: "com.missing"}, wantOK: false},
		{name: "unknown scheme", action: domain.Action{Name: domain.ActionView, Data: "spotify:track:1"}, wantOK: false},
		{name: "app scheme installed", action: domain.Action{Name: domain.ActionView, Data: "android-app://com.yelp.android/https/www.yelp.com"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "app scheme missing goes to store", action: domain.Action{Name: domain.ActionView, Data: "android-app://com.missing/x"}, wantPkg: domain.StorePackage, wantOK: true},
		{name: "custom action", action: domain.Action{Name: "com.yelp.android.NEARBY"}, wantPkg: "com.yelp.android", wantOK: true},
		{name: "unknown action", action: domain.Action{Name: "com.example.NOPE"}, wantOK: false},
		{name: "main entry", action: domain.Action{Name: domain.ActionMain, Package: "com.yelp.android"}, wantPkg: "com.yelp.android", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, ok := d.Match(tt.action)
			if ok != tt.wantOK {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && app.Package != tt.wantPkg {
				t.Errorf("Match() package = %v, want %v", app.Package, tt.wantPkg)
			}
		})
	}
}

func TestNewDeviceReplacesDuplicates(t *testing.T) {
	d := NewDevice("dup", []App{
		{Package: "a", Schemes: []string{"one"}},
		{Package: ""},
		{Package: "a", Schemes: []string{"two"}},
	})
	require.Len(t, d.Apps(), 1)
	app, ok := d.App("a")
	require.True(t, ok)
	assert.Equal(t, []string{"two"}, app.Schemes)
}

func TestSessionLaunchJournal(t *testing.T) {
	sess := NewSimulator(testDevice()).NewSession(SessionOptions{})

	require.NoError(t, sess.Launch(domain.Action{Name: domain.ActionView, Data: "yelp:///biz/1"}))
	require.ErrorIs(t, sess.Launch(domain.Action{Name: domain.ActionView, Data: "spotify:x"}), ErrNoActivity)
	require.ErrorIs(t, sess.Launch(domain.Action{Name: domain.ActionView, Data: "broken://x"}), ErrLaunchFailed)

	j := sess.Journal()
	require.Len(t, j, 3)
	assert.Equal(t, "com.yelp.android", j[0].Package)
	assert.Empty(t, j[0].Error)
	assert.NotEmpty(t, j[1].Error)
	assert.Equal(t, "com.broken", j[2].Package)
}

func TestSessionStoreListing(t *testing.T) {
	sess := NewSimulator(testDevice()).NewSession(SessionOptions{})
	require.NoError(t, sess.OpenStoreListing("com.x"))

	bare := NewSimulator(NewDevice("bare", nil)).NewSession(SessionOptions{})
	require.ErrorIs(t, bare.OpenStoreListing("com.x"), ErrStoreUnavailable)
}

func TestSessionShortcuts(t *testing.T) {
	d := testDevice()
	sess := NewSimulator(d).NewSession(SessionOptions{})

	assert.True(t, sess.ValidateShortcut("nearby", "com.yelp.android"))
	assert.False(t, sess.ValidateShortcut("nearby", "com.android.chrome"))
	require.NoError(t, sess.LaunchShortcut("nearby", "com.yelp.android"))
	require.ErrorIs(t, sess.LaunchShortcut("compose", "com.yelp.android"), ErrUnknownShortcut)

	noShortcuts := NewDevice("old", d.Apps())
	old := NewSimulator(noShortcuts).NewSession(SessionOptions{})
	assert.False(t, old.SupportsShortcuts())
	assert.False(t, old.ValidateShortcut("nearby", "com.yelp.android"))
}

func TestSessionLaunchEntry(t *testing.T) {
	d := NewDevice("d", []App{{Package: "svc", Launchable: false}, {Package: "app", Launchable: true}})
	sess := NewSimulator(d).NewSession(SessionOptions{})

	_, ok := sess.LaunchEntry("svc")
	assert.False(t, ok)
	a, ok := sess.LaunchEntry("app")
	require.True(t, ok)
	assert.Equal(t, domain.Action{Name: domain.ActionMain, Package: "app"}, a)
}

func TestSessionRunsResolutionChain(t *testing.T) {
	sess := NewSimulator(testDevice()).NewSession(SessionOptions{LaunchFlags: 0x10000000})
	l := domain.NewLink(domain.LinkFields{
		DestinationPackage: "com.yelp.android",
		URIScheme:          "yelp:///biz/1",
	})

	out := l.Resolve(sess.Env(), false)
	require.True(t, out.Opened)
	assert.Equal(t, domain.StrategyURIScheme, out.Strategy)

	j := sess.Journal()
	require.Len(t, j, 1)
	assert.Equal(t, domain.LaunchFlags(0x10000000), j[0].Action.Flags)
}

func TestSessionAcceptsPreviews(t *testing.T) {
	tree, err := domain.ParseHandler([]byte(`{"@type":"deep_view","title":"Tacos","links":[{"@type":"view_intent","data":"yelp:///biz/1"}]}`))
	require.NoError(t, err)
	l := domain.NewLink(domain.LinkFields{DestinationPackage: "com.yelp.android", Handler: tree})

	t.Run("preview only", func(t *testing.T) {
		sess := NewSimulator(testDevice()).NewSession(SessionOptions{})
		require.NoError(t, l.Open(sess.Env(), false))
		j := sess.Journal()
		require.Len(t, j, 1)
		assert.Equal(t, EventPreview, j[0].Kind)
		assert.Equal(t, "Tacos", j[0].Detail)
	})

	t.Run("accepted", func(t *testing.T) {
		sess := NewSimulator(testDevice()).NewSession(SessionOptions{AcceptPreviews: true})
		require.NoError(t, l.Open(sess.Env(), false))
		j := sess.Journal()
		require.Len(t, j, 2)
		assert.Equal(t, EventPreview, j[0].Kind)
		assert.Equal(t, EventLaunch, j[1].Kind)
		assert.Equal(t, "com.yelp.android", j[1].Package)
	})
}

func TestSimulatorSetDevice(t *testing.T) {
	sim := NewSimulator(nil)
	before := sim.NewSession(SessionOptions{})
	assert.False(t, before.IsInstalled("com.yelp.android"))

	sim.SetDevice(testDevice())
	sim.SetDevice(nil)
	after := sim.NewSession(SessionOptions{})
	assert.True(t, after.IsInstalled("com.yelp.android"))
	assert.False(t, before.IsInstalled("com.yelp.android"), "sessions keep their snapshot")
	assert.Equal(t, "pixel", sim.Device().Name)
}
