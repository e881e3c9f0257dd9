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
	ListenPort      string        // ex: ":5806"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	RefreshInterval time.Duration // interval between two catalog rebuilds (default: 2m)
	FetchTimeout    time.Duration // per-request timeout for every remote call (default: 10s)
	FetchRetries    int           // attempts per remote call, network errors and 5xx only (default: 3)
	CacheMaxAge     time.Duration // Cache-Control max-age on /v1/versions responses (default: 60s)

	SourcesFile string   // optional YAML overriding the built-in repositories and coordinates
	Sources     *Sources // resolved sources (defaults merged with SourcesFile)

	// Redis (optional snapshot mirror, empty RedisAddr disables it)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisSnapshotTTL    time.Duration // TTL of mirrored snapshot keys (default: 10m)

	AdminCIDRS []string // optional, restrict operations endpoints to specific IPs/CIDRs
	TrustProxy bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("META_LISTEN_PORT", ":5806"),
		ShutdownTimeout: mustDuration("META_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("META_LOG_LEVEL", "info"),
		PrettyLog: mustBool("META_PRETTY_LOG", true),

		// Refresh
		RefreshInterval: mustDuration("META_REFRESH_INTERVAL", 2*time.Minute),
		FetchTimeout:    mustDuration("META_FETCH_TIMEOUT", 10*time.Second),
		FetchRetries:    getenvInt("META_FETCH_RETRIES", 3),
		CacheMaxAge:     mustDuration("META_CACHE_MAX_AGE", 60*time.Second),

		SourcesFile: getenv("META_SOURCES_FILE", ""),

		// Redis settings
		RedisAddr:           getenv("META_REDIS_ADDR", ""),
		RedisUser:           getenv("META_REDIS_USERNAME", ""),
		RedisPassword:       getenv("META_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("META_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("META_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisSnapshotTTL:    mustDuration("META_REDIS_SNAPSHOT_TTL", 10*time.Minute),

		// Access restrictions
		AdminCIDRS: splitAndTrim(getenv("META_ADMIN_CIDRS", "")),
		TrustProxy: mustBool("META_TRUST_PROXY", false),
	}

	if cfg.RefreshInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: META_REFRESH_INTERVAL must be > 0, got %v", cfg.RefreshInterval))
	}
	if cfg.FetchTimeout <= 0 {
		panic(fmt.Sprintf("❌ FATAL: META_FETCH_TIMEOUT must be > 0, got %v", cfg.FetchTimeout))
	}
	if cfg.FetchRetries < 1 {
		panic(fmt.Sprintf("❌ FATAL: META_FETCH_RETRIES must be >= 1, got %d", cfg.FetchRetries))
	}

	sources, err := LoadSources(cfg.SourcesFile)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}
	cfg.Sources = sources

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v sources: %+v\n", cfgCopy, *cfg.Sources)
	}

	return cfg
}

// MirrorEnabled reports whether published snapshots should be written to Redis.
func (c *Config) MirrorEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
