package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendJournal  = "journal"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port         int
	MetricsPort  int
	GinMode      string
	LogLevel     string
	Environment  string
	OTLPEndpoint string

	Backend string
	Journal JournalConfig
	Redis   RedisConfig
	DB      DBConfig

	NATSUrl             string
	NotificationSubject string
	InboxSize           int
}

type JournalConfig struct {
	Path string
}

type DBConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load parses args (without the program name). Every flag defaults to its environment variable.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", getEnvInt("PORT", 8080), "HTTP server port")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", getEnvInt("METRICS_PORT", 9090), "Metrics server port")
	fs.StringVar(&cfg.GinMode, "gin-mode", getEnv("GIN_MODE", "release"), "Gin mode (debug/release/test)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug/info/warn/error)")
	fs.StringVar(&cfg.Environment, "environment", getEnv("ENVIRONMENT", "development"), "Deployment environment reported in logs and traces")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"), "OTLP gRPC collector endpoint")

	fs.StringVar(&cfg.Backend, "storage", getEnv("STORAGE_BACKEND", BackendMemory), "Account storage backend (memory/journal/redis/postgres)")
	fs.StringVar(&cfg.Journal.Path, "journal", getEnv("JOURNAL_PATH", "data/accounts.log"), "Journal file path")
	fs.StringVar(&cfg.Redis.Addr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address")
	fs.StringVar(&cfg.Redis.Password, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&cfg.Redis.DB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	fs.StringVar(&cfg.DB.DSN, "database-url", getEnv("DATABASE_URL", ""), "Postgres connection string")

	fs.StringVar(&cfg.NATSUrl, "nats-url", getEnv("NATS_URL", ""), "NATS server URL, empty disables NATS")
	fs.StringVar(&cfg.NotificationSubject, "notification-subject", getEnv("NOTIFICATION_SUBJECT", "ledger.notifications"), "NATS subject for notifications")
	fs.IntVar(&cfg.InboxSize, "inbox-size", getEnvInt("INBOX_SIZE", 50), "Notifications kept per account")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.MetricsPort <= 0 {
		return errors.New("ports must be positive")
	}
	if c.InboxSize <= 0 {
		return errors.New("inbox size must be positive")
	}

	switch c.Backend {
	case BackendMemory:
	case BackendJournal:
		if c.Journal.Path == "" {
			return errors.New("journal backend requires a journal path")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis backend requires a redis address")
		}
	case BackendPostgres:
		if c.DB.DSN == "" {
			return errors.New("postgres backend requires a database url")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}

	if c.NATSUrl != "" && c.NotificationSubject == "" {
		return errors.New("nats requires a notification subject")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
