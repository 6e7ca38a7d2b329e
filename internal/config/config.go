package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Matching
	MatchBatchSize    int
	MatchInterval     time.Duration
	MatchParallelism  int
	MatchLeaseTTL     time.Duration
	MatchMaxGroupSize int
	MatchOnEnqueue    bool // run a pass for the category right after each enqueue

	// Optional: shares the per-category matching lease across instances
	RedisURL string

	// Optional: require HS256 bearer tokens instead of trusting X-Profile-ID
	AuthJWTSecret string

	// Rate limiting for write endpoints
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Observability (optional)
	SentryDSN string

	// Report evidence archive (S3-compatible, optional: MinIO, AWS S3, Cloudflare R2, etc.)
	ArchiveBucket string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Accountabro"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "file:./data/matching.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"),

		// Matching
		MatchBatchSize:    envInt("MATCH_BATCH_SIZE", 200),
		MatchInterval:     envDuration("MATCH_INTERVAL", 30*time.Second),
		MatchParallelism:  envInt("MATCH_PARALLELISM", 4),
		MatchLeaseTTL:     envDuration("MATCH_LEASE_TTL", 30*time.Second),
		MatchMaxGroupSize: envInt("MATCH_MAX_GROUP_SIZE", 2),
		MatchOnEnqueue:    envBool("MATCH_ON_ENQUEUE", true),

		RedisURL: envString("REDIS_URL", ""),

		AuthJWTSecret: envString("AUTH_JWT_SECRET", ""),

		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Archive
		ArchiveBucket: envString("ARCHIVE_S3_BUCKET", ""),
		S3Region:      envString("S3_REGION", "us-east-1"),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the database is explicitly configured for
// production deployments. Development falls back to a local SQLite file.
func validateProduction(cfg *Config) {
	if cfg.DBDriver != "sqlite" && os.Getenv("DB_CONNECTION") == "" {
		slog.Error("production deployment requires DB_CONNECTION",
			"driver", cfg.DBDriver)
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
