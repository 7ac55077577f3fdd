// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yimbot/missionplanner/internal/database"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRemote   = "remote"
)

// Config is the full service configuration shared by the binaries.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	Database  database.Config `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	CORS      CORSConfig      `yaml:"cors"`
	Planner   PlannerConfig   `yaml:"planner"`
	PubSub    PubSubConfig    `yaml:"pubsub"`
	Worker    WorkerConfig    `yaml:"worker"`
}

// AppConfig holds HTTP server settings.
type AppConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequireTLS      bool          `yaml:"require_tls"`
}

// LogConfig controls log verbosity and optional file output.
type LogConfig struct {
	// Level is a zerolog level name. Empty selects debug outside production.
	Level string `yaml:"level"`
	// File, when set, receives a rotated copy of every log line.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// StoreConfig selects the path store backend.
type StoreConfig struct {
	Backend       string        `yaml:"backend"`
	RemoteURL     string        `yaml:"remote_url"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PlannerConfig sizes the flight path cache.
type PlannerConfig struct {
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`
}

// PubSubConfig identifies the job subscription.
type PubSubConfig struct {
	ProjectID      string `yaml:"project_id"`
	SubscriptionID string `yaml:"subscription_id"`
}

// WorkerConfig holds worker process settings.
type WorkerConfig struct {
	HealthPort       string        `yaml:"health_port"`
	BatchConcurrency int           `yaml:"batch_concurrency"`
	JobTimeout       time.Duration `yaml:"job_timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		App: AppConfig{
			Port:            "8080",
			Env:             "development",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			MaxSizeMB:  64,
			MaxAgeDays: 14,
		},
		Database: database.DefaultConfig(),
		Store: StoreConfig{
			Backend:       StoreMemory,
			RemoteTimeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Planner: PlannerConfig{
			CacheTTL:  10 * time.Minute,
			CacheSize: 256,
		},
		PubSub: PubSubConfig{
			SubscriptionID: "mission-jobs",
		},
		Worker: WorkerConfig{
			HealthPort:       "8081",
			BatchConcurrency: 4,
			JobTimeout:       2 * time.Minute,
		},
	}
}

// Load reads .env (if present), then the YAML file named by path or
// CONFIG_FILE (if any), then environment overrides, and validates the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	setString(&c.App.Port, "APP_PORT")
	setString(&c.App.Env, "APP_ENV")
	collect(setDuration(&c.App.ShutdownTimeout, "APP_SHUTDOWN_TIMEOUT"))
	collect(setBool(&c.App.RequireTLS, "REQUIRE_TLS"))

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")

	setString(&c.Database.Host, "DB_HOST")
	collect(setInt(&c.Database.Port, "DB_PORT"))
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")
	collect(setInt(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"))
	collect(setInt(&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"))
	collect(setDuration(&c.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME"))

	setString(&c.Store.Backend, "PATH_STORE")
	setString(&c.Store.RemoteURL, "PATH_STORE_URL")
	collect(setDuration(&c.Store.RemoteTimeout, "PATH_STORE_TIMEOUT"))

	collect(setBool(&c.Telemetry.Enabled, "OTEL_ENABLED"))
	setString(&c.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	collect(setFloat(&c.Telemetry.SampleRatio, "OTEL_TRACES_SAMPLER_ARG"))

	setList(&c.CORS.AllowedOrigins, "CORS_ORIGINS")

	collect(setDuration(&c.Planner.CacheTTL, "PLANNER_CACHE_TTL"))
	collect(setInt(&c.Planner.CacheSize, "PLANNER_CACHE_SIZE"))

	setString(&c.PubSub.ProjectID, "PUBSUB_PROJECT_ID")
	setString(&c.PubSub.SubscriptionID, "PUBSUB_SUBSCRIPTION_ID")

	setString(&c.Worker.HealthPort, "WORKER_HEALTH_PORT")
	collect(setInt(&c.Worker.BatchConcurrency, "WORKER_BATCH_CONCURRENCY"))
	collect(setDuration(&c.Worker.JobTimeout, "WORKER_JOB_TIMEOUT"))

	return errors.Join(errs...)
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StorePostgres:
	case StoreRemote:
		if c.Store.RemoteURL == "" {
			return errors.New("PATH_STORE_URL is required for the remote path store")
		}
	default:
		return fmt.Errorf("unknown path store %q", c.Store.Backend)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio %v is outside [0, 1]", c.Telemetry.SampleRatio)
	}
	if c.Worker.BatchConcurrency < 1 {
		return errors.New("worker batch concurrency must be at least 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
