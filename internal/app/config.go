package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/storeledger/backoffice/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"20s"`
	AppRateLimit      int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN      string `envconfig:"PG_DSN" required:"true"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"10"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ReportCacheTTL    time.Duration `envconfig:"REPORT_CACHE_TTL" default:"10m"`
	ReportTopProducts int           `envconfig:"REPORT_TOP_PRODUCTS" default:"5"`
	ReportTimezone    string        `envconfig:"REPORT_TIMEZONE" default:"Asia/Kolkata"`
	ReportStorageDir  string        `envconfig:"REPORT_STORAGE_DIR" default:"./var/reports"`
	ExportRateLimit   int           `envconfig:"EXPORT_RATE_LIMIT" default:"10"`

	location *time.Location
}

// LoadConfig reads configuration from the environment after loading an
// optional env file. An empty envFile means ".env" in the working directory.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.PGDSN) == "" {
		return errors.New("postgres dsn must be provided")
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return fmt.Errorf("report timezone %q: %w", c.ReportTimezone, err)
	}
	c.location = loc
	if c.ReportTopProducts <= 0 {
		return errors.New("report top products must be positive")
	}
	if c.ExportRateLimit < 0 || c.AppRateLimit < 0 {
		return errors.New("rate limits must not be negative")
	}
	return nil
}

// RedisOptions returns the connection settings shared by the cache and the queue.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// Location returns the reporting time zone.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.UTC
	}
	return c.location
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
