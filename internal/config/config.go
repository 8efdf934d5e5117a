package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds backend server configuration.
type Config struct {
	DatabaseURL   string
	ServerAddr    string
	MigrationsDir string
}

// AgentConfig holds device agent configuration.
type AgentConfig struct {
	StorePath      string
	ServerURL      string
	DeviceID       string
	ProbeInterval  time.Duration
	DrainSchedule  string
	MaxAttempts    int
	RequestTimeout time.Duration
}

// Load reads server configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "sahayak")
		pass := getenv("POSTGRES_PASSWORD", "sahayak_pass")
		db := getenv("POSTGRES_DB", "sahayak")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	return &Config{
		DatabaseURL:   dsn,
		ServerAddr:    getenv("SERVER_ADDR", "0.0.0.0:8080"),
		MigrationsDir: getenv("MIGRATIONS_DIR", "internal/migrations"),
	}, nil
}

// LoadAgent reads device agent configuration from environment.
func LoadAgent() (*AgentConfig, error) {
	return &AgentConfig{
		StorePath:      getenv("STORE_PATH", "sahayak.db"),
		ServerURL:      getenv("SERVER_URL", "http://localhost:8080"),
		DeviceID:       getenv("DEVICE_ID", "dev-local"),
		ProbeInterval:  parseDuration(getenv("PROBE_INTERVAL", "10s"), 10*time.Second),
		DrainSchedule:  getenv("DRAIN_SCHEDULE", "@every 2m"),
		MaxAttempts:    parseInt(getenv("SYNC_MAX_ATTEMPTS", "5"), 5),
		RequestTimeout: parseDuration(getenv("SYNC_REQUEST_TIMEOUT", "30s"), 30*time.Second),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
