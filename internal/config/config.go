package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RankerInProcess = "inprocess"
	RankerProcedure = "procedure"
)

type Config struct {
	Addr                  string
	DBDriver              string
	DatabaseURL           string
	LogLevel              string
	MoodConfigPath        string
	Ranker                string
	DefaultSessionLength  int
	MaxSessionLength      int
	MasteryWorkerCount    int
	MasteryQueueSize      int
	ImportMaxBytes        int
	RequestTimeoutSeconds int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBDriver:              strings.ToLower(envOr("DB_DRIVER", DriverSQLite)),
		DatabaseURL:           envOr("DATABASE_URL", "file:certbloom.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		MoodConfigPath:        os.Getenv("MOOD_CONFIG_PATH"),
		Ranker:                strings.ToLower(envOr("RANKER", RankerInProcess)),
		DefaultSessionLength:  envIntOr("DEFAULT_SESSION_LENGTH", 10),
		MaxSessionLength:      envIntOr("MAX_SESSION_LENGTH", 50),
		MasteryWorkerCount:    envIntOr("MASTERY_WORKER_COUNT", 2),
		MasteryQueueSize:      envIntOr("MASTERY_QUEUE_SIZE", 128),
		ImportMaxBytes:        envIntOr("IMPORT_MAX_BYTES", 5<<20),
		RequestTimeoutSeconds: envIntOr("REQUEST_TIMEOUT_SECONDS", 30),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL cannot be empty"))
	}
	if !validLogLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch c.Ranker {
	case RankerInProcess:
	case RankerProcedure:
		if c.DBDriver != DriverPostgres {
			errs = append(errs, errors.New("RANKER=procedure requires DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("RANKER must be %q or %q, got %q", RankerInProcess, RankerProcedure, c.Ranker))
	}
	if c.MaxSessionLength < 1 {
		errs = append(errs, fmt.Errorf("MAX_SESSION_LENGTH must be positive, got %d", c.MaxSessionLength))
	}
	if c.DefaultSessionLength < 1 || (c.MaxSessionLength >= 1 && c.DefaultSessionLength > c.MaxSessionLength) {
		errs = append(errs, fmt.Errorf("DEFAULT_SESSION_LENGTH must be between 1 and MAX_SESSION_LENGTH, got %d", c.DefaultSessionLength))
	}
	if c.MasteryWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("MASTERY_WORKER_COUNT must be positive, got %d", c.MasteryWorkerCount))
	}
	if c.MasteryQueueSize < 1 {
		errs = append(errs, fmt.Errorf("MASTERY_QUEUE_SIZE must be positive, got %d", c.MasteryQueueSize))
	}
	if c.ImportMaxBytes < 1 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_BYTES must be positive, got %d", c.ImportMaxBytes))
	}
	if c.RequestTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSeconds))
	}
	if c.MoodConfigPath != "" {
		if _, err := os.Stat(c.MoodConfigPath); err != nil {
			errs = append(errs, fmt.Errorf("MOOD_CONFIG_PATH %q: %w", c.MoodConfigPath, err))
		}
	}

	return errors.Join(errs...)
}

func validLogLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return true
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
