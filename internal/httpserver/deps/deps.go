package deps

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access the API
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	ProfileFile string // Path to the device profile
	CatalogFile string // Path to the catalog (captured search response)

	RedisClient *redis.Client      // Redis client connection, nil when running without Redis
	Store       *redisstore.Store  // Redis store, nil when running without Redis
	MemoryIndex *index.MemoryIndex // In-memory catalog index
	Simulator   *platform.Simulator

	Tracker         domain.ClickTracker // nil disables click tracking
	LaunchFlags     domain.LaunchFlags
	FallbackToStore bool          // default when a request does not say
	MaxCandidates   int           // Max number of search candidates dry-run on the device
	OutcomeTTL      time.Duration // TTL of cached outcomes

	RateLimit func(http.Handler) http.Handler // shared limiter of the resolution routes, nil = none

	ReloadTrigger        chan struct{} // Channel to trigger manual catalog reload
	ProfileReloadTrigger chan struct{} // Channel to trigger manual profile reload
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
