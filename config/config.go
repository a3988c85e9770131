package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Storage       StorageConfig       `yaml:"storage"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	Queue         QueueConfig         `yaml:"queue"`
	Capacity      CapacityConfig      `yaml:"capacity"`
	RacePack      RacePackConfig      `yaml:"racepack"`
	Txn           TxnConfig           `yaml:"txn"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// NATSConfig holds NATS configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL             string `yaml:"url" env:"NATS_URL"`
	ProvisionStream bool   `yaml:"provision_stream" env:"NATS_PROVISION_STREAM"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL"`
}

// RateLimitConfig bounds the public claim and login routes per client IP.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" env:"RATE_LIMIT_PER_SECOND"`
	Burst     int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// StorageConfig selects the blob backend. Driver is "s3" or "disk".
type StorageConfig struct {
	Driver          string        `yaml:"driver" env:"STORAGE_DRIVER"`
	DiskRoot        string        `yaml:"disk_root" env:"STORAGE_DISK_ROOT"`
	DiskBaseURL     string        `yaml:"disk_base_url" env:"STORAGE_DISK_BASE_URL"`
	Endpoint        string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region          string        `yaml:"region" env:"S3_REGION"`
	Bucket          string        `yaml:"bucket" env:"S3_BUCKET"`
	AccessKeyID     string        `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool          `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
	PresignTTL      time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL"`
}

// SMTPConfig holds mail settings. An empty host logs emails instead of sending them.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// QueueConfig tunes the River notification queue.
type QueueConfig struct {
	MaxAttempts int `yaml:"max_attempts" env:"QUEUE_MAX_ATTEMPTS"`
	MaxWorkers  int `yaml:"max_workers" env:"QUEUE_MAX_WORKERS"`
}

// CapacityConfig selects how declined registrations give back early-bird slots.
type CapacityConfig struct {
	ReleasePolicy string `yaml:"release_policy" env:"CAPACITY_RELEASE_POLICY"`
}

// RacePackConfig holds race-pack claim settings.
type RacePackConfig struct {
	Slack int `yaml:"slack" env:"RACEPACK_SLACK"`
}

// TxnConfig bounds transaction retries.
type TxnConfig struct {
	MaxAttempts int `yaml:"max_attempts" env:"TXN_MAX_ATTEMPTS"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string  `yaml:"service_name" env:"SERVICE_NAME"`
	LogLevel       string  `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string  `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddress string  `yaml:"metrics_address" env:"METRICS_ADDRESS"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate     float64 `yaml:"sample_rate" env:"TRACE_SAMPLE_RATE"`
}

// Default returns the configuration used when neither the file nor the
// environment sets a value.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		JWT:       JWTConfig{TokenTTL: 12 * time.Hour},
		RateLimit: RateLimitConfig{PerSecond: 5, Burst: 10},
		Storage: StorageConfig{
			Driver:      "disk",
			DiskRoot:    "./uploads",
			DiskBaseURL: "/uploads",
			Region:      "auto",
			PresignTTL:  15 * time.Minute,
		},
		SMTP:     SMTPConfig{Port: 587},
		Queue:    QueueConfig{MaxAttempts: 3, MaxWorkers: 5},
		Capacity: CapacityConfig{ReleasePolicy: "registration"},
		RacePack: RacePackConfig{Slack: 3},
		Txn:      TxnConfig{MaxAttempts: 3},
		Observability: ObservabilityConfig{
			ServiceName:    "racepack",
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsAddress: ":9090",
			SampleRate:     1,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.Storage.Driver {
	case "disk":
	case "s3":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.RacePack.Slack < 0 {
		errs = append(errs, errors.New("racepack.slack must not be negative"))
	}
	return errors.Join(errs...)
}
