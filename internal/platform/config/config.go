package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved process configuration. Components receive the
// section they need; none of them read the environment themselves.
type Config struct {
	Server       Server
	Policy       Policy
	Audit        Audit
	InternalAuth InternalAuth
	Database     DatabaseConfig
	Redis        RedisConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel slog.Level
}

// Policy configures the policy decision point the gateway consults.
// An empty PDPURL means enforcement is not active and every check allows.
type Policy struct {
	PDPURL string
}

// Audit holds the process-wide version tags stamped on audit metadata when the
// caller does not provide its own.
type Audit struct {
	SchemaVersion string
	PolicyVersion string
}

// InternalAuth holds the shared secret internal services present on every call.
type InternalAuth struct {
	SharedSecret string
}

// DatabaseConfig configures the Postgres pool backing the audit sink.
// An empty URL selects the in-memory sink.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis record store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:     envString("RECORDGATE_ADDR", ":8080"),
			LogLevel: parseLevel(os.Getenv("LOG_LEVEL")),
		},
		Policy: Policy{
			PDPURL: strings.TrimSpace(os.Getenv("PDP_URL")),
		},
		Audit: Audit{
			SchemaVersion: envString("AUDIT_SCHEMA_VERSION", "1"),
			PolicyVersion: os.Getenv("AUDIT_POLICY_VERSION"),
		},
		InternalAuth: InternalAuth{
			SharedSecret: os.Getenv("INTERNAL_SHARED_SECRET"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
