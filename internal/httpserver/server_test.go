package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

func testDeps() deps.Deps {
	device := platform.NewDevice("pixel", []platform.App{
		{Package: domain.StorePackage, Launchable: true, Hosts: []string{"play.google.com"}},
		{Package: "com.android.chrome", Launchable: true, Browser: true},
	})

	idx := index.NewMemoryIndex()
	idx.UpdateLinks([]*catalog.Record{
		catalog.NewRecord(domain.NewLink(domain.LinkFields{
			EntityID: "web",
			Name:     "Web Page",
			WebLink:  "https://example.com/page",
		}), "catalog", time.Now()),
	})

	return deps.Deps{
		Logger:               logger.NewNop(),
		StartTime:            time.Now(),
		AllowedHosts:         []string{"linkjump.local"},
		AllowedCIDRS:         []string{"10.0.0.0/8"},
		MemoryIndex:          idx,
		Simulator:            platform.NewSimulator(device),
		ReloadTrigger:        make(chan struct{}, 1),
		ProfileReloadTrigger: make(chan struct{}, 1),
	}
}

func request(method, target, remote, host string) *http.Request {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{"web_link":"https://example.com/x"}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = remote
	req.Host = host
	return req
}

func TestRouterAccessControl(t *testing.T) {
	r := NewRouter(logger.NewNop(), testDeps())

	tests := []struct {
		name   string
		method string
		path   string
		remote string
		host   string
		want   int
	}{
		{name: "healthz is open", method: http.MethodGet, path: "/healthz", remote: "192.0.2.1:1234", host: "other", want: http.StatusOK},
		{name: "readyz checks cidr", method: http.MethodGet, path: "/readyz", remote: "192.0.2.1:1234", host: "linkjump.local", want: http.StatusForbidden},
		{name: "readyz ignores host", method: http.MethodGet, path: "/readyz", remote: "10.1.2.3:1234", host: "other", want: http.StatusOK},
		{name: "infra checks host", method: http.MethodGet, path: "/infra", remote: "10.1.2.3:1234", host: "other", want: http.StatusForbidden},
		{name: "infra allowed", method: http.MethodGet, path: "/infra", remote: "10.1.2.3:1234", host: "linkjump.local", want: http.StatusOK},
		{name: "search allowed", method: http.MethodGet, path: "/search?q=web", remote: "10.1.2.3:1234", host: "LinkJump.Local", want: http.StatusOK},
		{name: "link lookup", method: http.MethodGet, path: "/links/web", remote: "10.1.2.3:1234", host: "linkjump.local", want: http.StatusOK},
		{name: "link tester", method: http.MethodPost, path: "/links/resolve", remote: "10.1.2.3:1234", host: "linkjump.local", want: http.StatusOK},
		{name: "link tester outside cidr", method: http.MethodPost, path: "/links/resolve", remote: "192.0.2.1:1234", host: "linkjump.local", want: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/nope", remote: "10.1.2.3:1234", host: "linkjump.local", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, request(tt.method, tt.path, tt.remote, tt.host))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterRateLimitsResolution(t *testing.T) {
	d := testDeps()
	d.RateLimit = mw.RateLimit(mw.RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})
	r := NewRouter(logger.NewNop(), d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodPost, "/links/web/open", "10.1.2.3:1234", "linkjump.local"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodPost, "/links/web/open", "10.1.2.3:1234", "linkjump.local"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Lookups are not rate limited.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodGet, "/links/web", "10.1.2.3:1234", "linkjump.local"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzServesJSON(t *testing.T) {
	r := NewRouter(logger.NewNop(), testDeps())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodGet, "/healthz", "10.1.2.3:1234", "linkjump.local"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
