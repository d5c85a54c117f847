package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ProfileFile      string        // path to the device profile YAML
	CatalogFile      string        // path to the captured search response (JSON)
	ReloadInterval   time.Duration // interval to reload profile and catalog (default: 24h)
	GCInterval       time.Duration // interval to run garbage collection (default: 24h)
	MaxCandidates    int           // max number of search candidates dry-run on the device (default: 5, 0 = no limit)
	FallbackToStore  bool          // default for routes that do not pass ?fallback=
	LaunchFlags      int           // flags stamped on every launched action (accepts 0x...)
	ParseConcurrency int           // apps filtered at once when parsing the catalog

	// Click tracking
	TrackingEnabled bool          // fire click-tracking URLs on every open attempt
	TrackingTimeout time.Duration // per-request timeout for tracking calls

	// Rate limiting of the resolution routes
	RateLimitBurst  int
	RateLimitPerMin int

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
	OutcomeTTL            time.Duration // TTL of cached resolution outcomes

	AllowedHosts []string // restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKJUMP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKJUMP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKJUMP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKJUMP_PRETTY_LOG", true),

		// Sources
		ProfileFile:      getenv("LINKJUMP_PROFILE_FILE", "/app/device.yaml"),
		CatalogFile:      getenv("LINKJUMP_CATALOG_FILE", "/app/catalog.json"),
		ReloadInterval:   mustDuration("LINKJUMP_RELOAD_INTERVAL", 24*time.Hour),
		GCInterval:       mustDuration("LINKJUMP_GC_INTERVAL", 24*time.Hour),
		MaxCandidates:    getenvInt("LINKJUMP_MAX_CANDIDATES", 5),
		FallbackToStore:  mustBool("LINKJUMP_FALLBACK_TO_STORE", false),
		LaunchFlags:      mustFlags("LINKJUMP_LAUNCH_FLAGS", 0),
		ParseConcurrency: getenvInt("LINKJUMP_PARSE_CONCURRENCY", 4),

		// Click tracking
		TrackingEnabled: mustBool("LINKJUMP_TRACKING_ENABLED", false),
		TrackingTimeout: mustDuration("LINKJUMP_TRACKING_TIMEOUT", 3*time.Second),

		// Rate limiting
		RateLimitBurst:  getenvInt("LINKJUMP_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("LINKJUMP_RATE_LIMIT_PER_MIN", 60),

		// Redis settings
		RedisAddr:             requireEnv("LINKJUMP_REDIS_ADDR"),
		RedisUser:             getenv("LINKJUMP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKJUMP_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LINKJUMP_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("LINKJUMP_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
		OutcomeTTL:            mustDuration("REDIS_OUTCOME_TTL", 24*time.Hour),

		// Access restrictions
		AllowedHosts: requireEnvSlice("LINKJUMP_ALLOWED_HOSTS"),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKJUMP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKJUMP_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKJUMP_REDIS_PASSWORD is required when LINKJUMP_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := requireEnv(key)
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func requireEnvSlice(key string) []string {
	return splitAndTrim(requireEnv(key))
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustFlags reads an integer bit set written in decimal, hex (0x) or octal (0o).
// Unparseable values are fatal.
func mustFlags(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 0, 32)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid flag value for %s: %s", key, v))
	}
	return int(i)
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
