package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Browser   BrowserConfig
	Extract   ExtractConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls the outbound page fetch.
type FetchConfig struct {
	// Timeout bounds a single fetch, including redirects and body read.
	Timeout time.Duration // default: 15s

	// MaxBodyBytes caps how much of the response body is read.
	MaxBodyBytes int64 // default: 5 MiB

	// MaxRedirects is the redirect budget per fetch. 0 disables redirects.
	MaxRedirects int // default: 5

	// UserAgent overrides the desktop Chrome User-Agent.
	UserAgent string

	// Proxy is an optional proxy URL for all outbound requests.
	Proxy string
}

// BrowserConfig controls the optional headless Chrome engine.
type BrowserConfig struct {
	// Enabled adds the browser engine behind the HTTP engine.
	Enabled bool // default: false

	Headless  bool // default: true
	NoSandbox bool // default: false (set true in Docker)
	Bin       string

	// MaxPages is the tab pool capacity.
	MaxPages int // default: 4

	// EscalationDelays is the staged start delay per engine tier
	// (HTTP first, then browser).
	EscalationDelays []time.Duration // default: [0s, 3s]

	// DomainMemoryTTL is how long the winning engine is remembered per host.
	DomainMemoryTTL time.Duration // default: 30m
}

// ExtractConfig controls field extraction.
type ExtractConfig struct {
	// MaxDescriptionLength caps the description, in runes.
	MaxDescriptionLength int // default: 10000

	// RequiredFields lists the fields that must be found for success.
	RequiredFields []string // default: ["jobTitle"]
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication. With no keys configured
	// every request is let through.
	Enabled bool // default: true

	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	MaxEntries int           // default: 500; 0 disables
	TTL        time.Duration // default: 10m; 0 disables
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string // default: ["*"]
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("JOBSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("JOBSCOUT_PORT", 8080),
			Mode: envOr("JOBSCOUT_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("JOBSCOUT_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes: int64(envIntOr("JOBSCOUT_MAX_BODY_BYTES", 5<<20)),
			MaxRedirects: envIntOr("JOBSCOUT_MAX_REDIRECTS", 5),
			UserAgent:    os.Getenv("JOBSCOUT_USER_AGENT"),
			Proxy:        os.Getenv("JOBSCOUT_PROXY"),
		},
		Browser: BrowserConfig{
			Enabled:          envBoolOr("JOBSCOUT_BROWSER_ENABLED", false),
			Headless:         envBoolOr("JOBSCOUT_BROWSER_HEADLESS", true),
			NoSandbox:        envBoolOr("JOBSCOUT_BROWSER_NO_SANDBOX", false),
			Bin:              os.Getenv("JOBSCOUT_BROWSER_BIN"),
			MaxPages:         envIntOr("JOBSCOUT_BROWSER_MAX_PAGES", 4),
			EscalationDelays: envDurationSliceOr("JOBSCOUT_ESCALATION_DELAYS", []time.Duration{0, 3 * time.Second}),
			DomainMemoryTTL:  envDurationOr("JOBSCOUT_DOMAIN_MEMORY_TTL", 30*time.Minute),
		},
		Extract: ExtractConfig{
			MaxDescriptionLength: envIntOr("JOBSCOUT_MAX_DESCRIPTION", 10000),
			RequiredFields:       envSliceOr("JOBSCOUT_REQUIRED_FIELDS", []string{"jobTitle"}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("JOBSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("JOBSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("JOBSCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("JOBSCOUT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("JOBSCOUT_CACHE_ENTRIES", 500),
			TTL:        envDurationOr("JOBSCOUT_CACHE_TTL", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("JOBSCOUT_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  envOr("JOBSCOUT_LOG_LEVEL", "info"),
			Format: envOr("JOBSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes must be positive"))
	}
	if c.Fetch.MaxRedirects < 0 {
		errs = append(errs, errors.New("max redirects must not be negative"))
	}
	if c.Extract.MaxDescriptionLength <= 0 {
		errs = append(errs, errors.New("max description length must be positive"))
	}
	if len(c.Extract.RequiredFields) == 0 {
		errs = append(errs, errors.New("required fields must not be empty"))
	}
	if c.Browser.Enabled && c.Browser.MaxPages <= 0 {
		errs = append(errs, errors.New("browser max pages must be positive"))
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}
	if c.Cache.MaxEntries < 0 || c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache entries and ttl must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be json or text", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
