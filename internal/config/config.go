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

	// Catalog (Google Books)
	CatalogBaseURL  string        // ex: https://www.googleapis.com/books/v1
	CatalogAPIKey   string        // optional, raises the unauthenticated quota
	CatalogTimeout  time.Duration // per-request timeout (default: 5s)
	SearchCacheTTL  time.Duration // TTL for cached search responses (default: 1h)
	SearchMaxResult int           // max items per search (default: 20)

	// Recommendations (OpenAI)
	OpenAIAPIKey string // optional, empty = recommendations disabled
	OpenAIModel  string // ex: "gpt-4o-mini"

	// Featured shelves
	FeaturedFile   string        // path to featured.yaml (optional, empty = disabled)
	ReloadInterval time.Duration // interval to reload featured.yaml (default: 24h)
	RepairInterval time.Duration // interval to repair bookmark indexes (default: 24h)

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

	// Access restrictions
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict /reload and /infra to specific IPs
	AllowedOrigins []string // CORS origins for the browser UI (default: "*")
	TrustProxy     bool     // true => trust X-Forwarded-For headers

	// Rate limiting for the recommendation endpoint (the only route that
	// spends upstream LLM quota per hit).
	RecommendBurst  int // bucket size per IP (default: 5)
	RecommendPerMin int // refill per IP per minute (default: 10)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELFMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELFMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHELFMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELFMARK_PRETTY_LOG", false),

		// Catalog
		CatalogBaseURL:  getenv("SHELFMARK_CATALOG_BASE_URL", "https://www.googleapis.com/books/v1"),
		CatalogAPIKey:   getenv("SHELFMARK_CATALOG_API_KEY", ""),
		CatalogTimeout:  mustDuration("SHELFMARK_CATALOG_TIMEOUT", 5*time.Second),
		SearchCacheTTL:  mustDuration("SHELFMARK_SEARCH_CACHE_TTL", time.Hour),
		SearchMaxResult: getenvInt("SHELFMARK_SEARCH_MAX_RESULTS", 20),

		// Recommendations
		OpenAIAPIKey: getenv("SHELFMARK_OPENAI_API_KEY", ""),
		OpenAIModel:  getenv("SHELFMARK_OPENAI_MODEL", "gpt-4o-mini"),

		// Featured shelves
		FeaturedFile:   getenv("SHELFMARK_FEATURED_FILE", ""),
		ReloadInterval: mustDuration("SHELFMARK_RELOAD_INTERVAL", 24*time.Hour),
		RepairInterval: mustDuration("SHELFMARK_REPAIR_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("SHELFMARK_REDIS_ADDR"),
		RedisUser:             getenv("SHELFMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELFMARK_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SHELFMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELFMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("SHELFMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("SHELFMARK_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("SHELFMARK_ALLOWED_ORIGINS", "*")),
		TrustProxy:     mustBool("SHELFMARK_TRUST_PROXY", false),

		// Rate limiting
		RecommendBurst:  getenvInt("SHELFMARK_RECOMMEND_BURST", 5),
		RecommendPerMin: getenvInt("SHELFMARK_RECOMMEND_PER_MIN", 10),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SHELFMARK_REDIS_PASSWORD is required when SHELFMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.CatalogAPIKey = "***REDACTED***"
		cfgCopy.OpenAIAPIKey = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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
