package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenApp(t *testing.T) {
	tests := []struct {
		name      string
		installed bool
		launchOK  bool
		storeOK   bool
		fallback  bool
		wantErr   bool
		wantStore int
	}{
		{name: "launches entry point", installed: true, launchOK: true},
		{name: "launch fails without fallback", installed: true, launchOK: false, wantErr: true},
		{name: "launch fails with fallback", installed: true, launchOK: false, storeOK: true, fallback: true, wantStore: 1},
		{name: "not installed with fallback", storeOK: true, fallback: true, wantStore: 1},
		{name: "not installed, store down", fallback: true, wantErr: true, wantStore: 1},
		{name: "not installed without fallback", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePlatform()
			if tt.installed {
				p.entries["com.example"] = Action{Name: ActionMain, Package: "com.example"}
			}
			if tt.launchOK {
				p.canLaunch = launchAll
			}
			p.storeOK = tt.storeOK

			app := &AppResult{AppName: "Example", PackageName: "com.example"}
			err := app.OpenApp(&Env{Platform: p}, tt.fallback)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsRoutingFailure(err))
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, p.storeCalls, tt.wantStore)
		})
	}
}

func TestOpenAppSurvivesPanic(t *testing.T) {
	p := newFakePlatform()
	p.panicOps["launch_entry"] = true
	app := &AppResult{PackageName: "com.example"}

	var err error
	require.NotPanics(t, func() { err = app.OpenApp(&Env{Platform: p}, true) })
	assert.True(t, IsRoutingFailure(err))
}

func TestAppResultInfo(t *testing.T) {
	app := &AppResult{
		AppName:           "Yelp",
		PackageName:       "com.yelp.android",
		IconURL:           "https://cdn.example.com/yelp.png",
		RankingHint:       "featured",
		DeepviewExtraText: "Open in Yelp",
	}
	assert.Equal(t, AppInfo{
		Name:              "Yelp",
		PackageName:       "com.yelp.android",
		IconURL:           "https://cdn.example.com/yelp.png",
		DeepviewExtraText: "Open in Yelp",
	}, app.Info())
	assert.True(t, app.IsAd())
}
