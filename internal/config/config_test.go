package config

import (
	"reflect"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LINKJUMP_REDIS_ADDR", "localhost:6379")
	t.Setenv("LINKJUMP_REDIS_DB", "2")
	t.Setenv("LINKJUMP_REDIS_PASSWORD", "secret")
	t.Setenv("LINKJUMP_ALLOWED_HOSTS", "links.example.com, 'localhost:8080'")
}

func expectPanic(t *testing.T, name string) {
	t.Helper()
	if r := recover(); r == nil {
		t.Errorf("%s should have panicked", name)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if want := []string{"links.example.com", "localhost:8080"}; !reflect.DeepEqual(cfg.AllowedHosts, want) {
		t.Errorf("AllowedHosts = %v, want %v", cfg.AllowedHosts, want)
	}
	if cfg.ReloadInterval != 24*time.Hour {
		t.Errorf("ReloadInterval = %v, want 24h", cfg.ReloadInterval)
	}
	if cfg.MaxCandidates != 5 || cfg.ParseConcurrency != 4 {
		t.Errorf("MaxCandidates, ParseConcurrency = %d, %d, want 5, 4", cfg.MaxCandidates, cfg.ParseConcurrency)
	}
	if cfg.FallbackToStore || cfg.TrackingEnabled || cfg.LaunchFlags != 0 {
		t.Error("opt-in behaviors should default to off")
	}
	if cfg.AllowedCIDRS != nil {
		t.Errorf("AllowedCIDRS = %v, want nil", cfg.AllowedCIDRS)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LINKJUMP_LAUNCH_FLAGS", "0x10000000")
	t.Setenv("LINKJUMP_FALLBACK_TO_STORE", "true")
	t.Setenv("LINKJUMP_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.4")
	t.Setenv("LINKJUMP_RELOAD_INTERVAL", "15m")
	t.Setenv("LINKJUMP_MAX_CANDIDATES", "not-a-number")

	cfg := Load()

	if cfg.LaunchFlags != 0x10000000 {
		t.Errorf("LaunchFlags = %#x, want 0x10000000", cfg.LaunchFlags)
	}
	if !cfg.FallbackToStore {
		t.Error("FallbackToStore = false, want true")
	}
	if want := []string{"10.0.0.0/8", "192.168.1.4"}; !reflect.DeepEqual(cfg.AllowedCIDRS, want) {
		t.Errorf("AllowedCIDRS = %v, want %v", cfg.AllowedCIDRS, want)
	}
	if cfg.ReloadInterval != 15*time.Minute {
		t.Errorf("ReloadInterval = %v, want 15m", cfg.ReloadInterval)
	}
	if cfg.MaxCandidates != 5 {
		t.Errorf("MaxCandidates = %d, want default 5 on garbage", cfg.MaxCandidates)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		set   map[string]string
	}{
		{name: "missing redis addr", unset: "LINKJUMP_REDIS_ADDR"},
		{name: "missing allowed hosts", unset: "LINKJUMP_ALLOWED_HOSTS"},
		{name: "invalid redis db", set: map[string]string{"LINKJUMP_REDIS_DB": "two"}},
		{name: "password required", unset: "LINKJUMP_REDIS_PASSWORD"},
		{name: "invalid launch flags", set: map[string]string{"LINKJUMP_LAUNCH_FLAGS": "0xZZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			for k, v := range tt.set {
				t.Setenv(k, v)
			}
			defer expectPanic(t, "Load()")
			Load()
		})
	}
}

func TestPasswordOptional(t *testing.T) {
	setRequired(t)
	t.Setenv("LINKJUMP_REDIS_PASSWORD", "")
	t.Setenv("LINKJUMP_REDIS_PASSWORD_REQUIRED", "false")

	if cfg := Load(); cfg.RedisPassword != "" {
		t.Errorf("RedisPassword = %q, want empty", cfg.RedisPassword)
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisUser: "default", RedisPassword: "secret"}
	r := cfg.Redacted()
	if r.RedisPassword == "secret" || r.RedisUser == "default" {
		t.Errorf("Redacted() leaked credentials: %+v", r)
	}
	if cfg.RedisPassword != "secret" {
		t.Error("Redacted() modified the original")
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{name: "valid", value: "5s", def: time.Second, want: 5 * time.Second},
		{name: "invalid falls back", value: "soon", def: time.Second, want: time.Second},
		{name: "unset", value: "", def: 2 * time.Second, want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a, b ,c", want: []string{"a", "b", "c"}},
		{in: `"a", 'b',,`, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		if got := splitAndTrim(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
