package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

const catalogV1 = `{
  "request_id": "req-1",
  "success": true,
  "results": [
    {
      "app_name": "Yelp",
      "app_store_id": "com.yelp.android",
      "deep_links": [
        {"entity_id": "taco", "name": "Taco Place", "uri_scheme": "yelp:///biz/taco"},
        {"entity_id": "sushi", "name": "Sushi Bar", "uri_scheme": "yelp:///biz/sushi"},
        {"name": "No id", "uri_scheme": "yelp:///biz/x"}
      ]
    }
  ]
}`

const catalogV2 = `{
  "request_id": "req-2",
  "success": true,
  "results": [
    {
      "app_name": "Yelp",
      "app_store_id": "com.yelp.android",
      "deep_links": [
        {"entity_id": "taco", "name": "Taco Palace", "uri_scheme": "yelp:///biz/taco"}
      ]
    }
  ]
}`

const profileYAML = `device:
  name: pixel
  apps:
    - package: com.yelp.android
      schemes: [yelp]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestSimulator() *platform.Simulator {
	return platform.NewSimulator(platform.NewDevice("pixel", []platform.App{
		{Package: "com.yelp.android", Launchable: true, Schemes: []string{"yelp"}},
	}))
}

func TestCatalogReloaderReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.json", catalogV1)
	idx := index.NewMemoryIndex()

	cr := NewCatalogReloader(path, newTestSimulator(), nil, idx, logger.NewNop(), time.Hour, 2, nil)
	require.NoError(t, cr.Reload(context.Background()))

	assert.Equal(t, 2, idx.Count(), "links without entity id are skipped")
	reqID, apps := idx.GetApps()
	assert.Equal(t, "req-1", reqID)
	require.Len(t, apps, 1)

	idx.IncrementClicks("taco", time.Now())

	writeFile(t, dir, "catalog.json", catalogV2)
	require.NoError(t, cr.Reload(context.Background()))

	taco, ok := idx.GetLink("taco")
	require.True(t, ok)
	assert.Equal(t, "Taco Palace", taco.Link.Name())
	assert.Equal(t, int64(1), taco.Clicks, "click history survives a reload")
	assert.False(t, taco.Disabled)

	sushi, ok := idx.GetLink("sushi")
	require.True(t, ok)
	assert.True(t, sushi.Disabled)
	disabledAt := sushi.UpdatedAt

	require.NoError(t, cr.Reload(context.Background()))
	sushi, _ = idx.GetLink("sushi")
	assert.Equal(t, disabledAt, sushi.UpdatedAt, "disable time is stamped once")
}

func TestCatalogReloaderKeepsClicksDuringMerge(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.json", catalogV1)
	idx := index.NewMemoryIndex()
	sim := newTestSimulator()

	cr := NewCatalogReloader(path, sim, nil, idx, logger.NewNop(), time.Hour, 1, nil)
	require.NoError(t, cr.Reload(context.Background()))
	idx.IncrementClicks("taco", time.Now())

	sess := sim.NewSession(platform.SessionOptions{Logger: logger.NewNop()})
	result, err := catalog.ParseSearchResponse(context.Background(), []byte(catalogV2), sess.Env(), 1)
	require.NoError(t, err)

	// An open lands between the reloader's snapshot and its index update.
	records := cr.merge(result, time.Now())
	idx.IncrementClicks("taco", time.Now())
	idx.UpdateLinks(records)

	taco, ok := idx.GetLink("taco")
	require.True(t, ok)
	assert.Equal(t, int64(2), taco.Clicks)
	assert.Equal(t, "Taco Palace", taco.Link.Name())
}

func TestCatalogReloaderKeepsOtherSources(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.json", catalogV2)
	idx := index.NewMemoryIndex()

	warm := record("from-redis", false, time.Now())
	warm.Sources = []string{SourceRedis}
	idx.AddLink(warm)

	cr := NewCatalogReloader(path, newTestSimulator(), nil, idx, logger.NewNop(), time.Hour, 0, nil)
	require.NoError(t, cr.Reload(context.Background()))

	r, ok := idx.GetLink("from-redis")
	require.True(t, ok)
	assert.False(t, r.Disabled)
}

func TestCatalogReloaderFiltersAgainstDevice(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.json", catalogV1)
	idx := index.NewMemoryIndex()

	// Yelp is not installed and the links have no web link.
	sim := platform.NewSimulator(platform.NewDevice("bare", nil))
	cr := NewCatalogReloader(path, sim, nil, idx, logger.NewNop(), time.Hour, 0, nil)
	require.NoError(t, cr.Reload(context.Background()))

	assert.Equal(t, 0, idx.Count())
	assert.Equal(t, 0, idx.AppCount())
}

func TestCatalogReloaderMissingFile(t *testing.T) {
	cr := NewCatalogReloader(filepath.Join(t.TempDir(), "nope.json"), newTestSimulator(), nil, index.NewMemoryIndex(), logger.NewNop(), time.Hour, 0, nil)
	assert.Error(t, cr.Reload(context.Background()))
	assert.Error(t, cr.Start(context.Background()))
}

func TestProfileReloaderReload(t *testing.T) {
	dir := t.TempDir()
	profilePath := writeFile(t, dir, "device.yaml", profileYAML)
	catalogPath := writeFile(t, dir, "catalog.json", catalogV1)

	sim := platform.NewSimulator(nil)
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(catalogPath, sim, nil, idx, logger.NewNop(), time.Hour, 0, nil)
	pr := NewProfileReloader(profilePath, sim, cr, logger.NewNop(), time.Hour, nil)

	require.NoError(t, pr.Reload(context.Background()))

	assert.Equal(t, "pixel", sim.Device().Name)
	assert.True(t, sim.Device().IsInstalled("com.yelp.android"))
	assert.Equal(t, 2, idx.Count(), "catalog is re-filtered for the new device")
}

func TestProfileReloaderRejectsBadProfile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "device.yaml", "device:\n  apps:\n    - schemes: [x]\n")

	sim := newTestSimulator()
	pr := NewProfileReloader(path, sim, nil, logger.NewNop(), time.Hour, nil)

	require.Error(t, pr.Reload(context.Background()))
	assert.Equal(t, "pixel", sim.Device().Name, "previous device is kept")
}

func TestReloadersStartAndStop(t *testing.T) {
	dir := t.TempDir()
	profilePath := writeFile(t, dir, "device.yaml", profileYAML)
	catalogPath := writeFile(t, dir, "catalog.json", catalogV1)

	sim := platform.NewSimulator(nil)
	idx := index.NewMemoryIndex()
	trigger := make(chan struct{}, 1)

	pr := NewProfileReloader(profilePath, sim, nil, logger.NewNop(), time.Hour, nil)
	cr := NewCatalogReloader(catalogPath, sim, nil, idx, logger.NewNop(), time.Hour, 0, trigger)

	require.NoError(t, pr.Start(context.Background()))
	require.NoError(t, cr.Start(context.Background()))
	assert.Equal(t, 2, idx.Count())

	writeFile(t, dir, "catalog.json", catalogV2)
	before := idx.GetLastReload()
	trigger <- struct{}{}
	require.Eventually(t, func() bool {
		_, apps := idx.GetApps()
		return idx.GetLastReload().After(before) && len(apps) == 1 && apps[0].Links[0].Name() == "Taco Palace"
	}, 2*time.Second, 10*time.Millisecond)

	pr.Stop()
	cr.Stop()
}
