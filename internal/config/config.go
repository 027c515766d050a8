package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/apparelstore/pkg/config"
	"github.com/utafrali/apparelstore/pkg/database"
	"github.com/utafrali/apparelstore/pkg/tracing"
)

// ServiceName identifies this process in logs, metrics and traces.
const ServiceName = "apparelstore"

const defaultJWTSecret = "dev-secret-change-me-dev-secret-change-me"

// Storage backends.
const (
	StorageMemory      = "memory"
	StorageObjectStore = "objectstore"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"20s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	PprofCIDRs      []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
	CatalogMaxAge   int           `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`

	// PostgreSQL. DATABASE_URL wins over the discrete fields.
	DatabaseURL     string        `env:"DATABASE_URL"`
	PostgresHost    string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort    int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser    string        `env:"POSTGRES_USER" envDefault:"apparel"`
	PostgresPass    string        `env:"POSTGRES_PASSWORD" envDefault:"apparel_secret"`
	PostgresDB      string        `env:"POSTGRES_DB" envDefault:"apparel"`
	PostgresSSL     string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConn int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	SlowQuery       time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis. REDIS_URL wins over the discrete fields.
	RedisURL      string        `env:"REDIS_URL"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Kafka. Empty brokers disable event publishing and the stats consumer.
	KafkaBrokers    []string      `env:"KAFKA_BROKERS" envSeparator:","`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	ConsumerRetries int           `env:"CONSUMER_MAX_RETRIES" envDefault:"3"`
	ConsumerBackoff time.Duration `env:"CONSUMER_RETRY_BACKOFF" envDefault:"500ms"`

	// Search index. Empty URLs keep search on PostgreSQL.
	ElasticsearchURLs  []string `env:"ELASTICSEARCH_URLS" envSeparator:","`
	ElasticsearchIndex string   `env:"ELASTICSEARCH_INDEX" envDefault:"apparel_products"`
	ElasticsearchUser  string   `env:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPass  string   `env:"ELASTICSEARCH_PASSWORD"`

	// Image storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	StorageBaseURL string `env:"STORAGE_BASE_URL" envDefault:"http://localhost:8080"`
	StorageBucket  string `env:"STORAGE_BUCKET" envDefault:"product-image"`
	StorageAPIKey  string `env:"STORAGE_API_KEY"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Admin auth
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me-dev-secret-change-me"`
	TokenExpiry       time.Duration `env:"ADMIN_TOKEN_EXPIRY" envDefault:"12h"`
	AdminEmail        string        `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`

	// Rate limiting for checkout, upload and login, per client IP.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables, after an optional
// .env file in the working directory.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotEnv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load apparelstore config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort))
	}
	if c.DatabaseURL == "" && c.PostgresHost == "" {
		errs = append(errs, errors.New("POSTGRES_HOST or DATABASE_URL is required"))
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %g", c.OTelSampleRate))
	}
	switch c.StorageBackend {
	case StorageMemory:
	case StorageObjectStore:
		if c.StorageBaseURL == "" || c.StorageAPIKey == "" {
			errs = append(errs, errors.New("STORAGE_BASE_URL and STORAGE_API_KEY are required for the objectstore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %s or %s, got %q", StorageMemory, StorageObjectStore, c.StorageBackend))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32) {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be changed from the default and be at least 32 bytes in %s environment", c.Environment))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs outside local development.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env != "development" && env != "test"
}

// KafkaEnabled reports whether brokers are configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// SearchEnabled reports whether a search cluster is configured.
func (c *Config) SearchEnabled() bool {
	return len(c.ElasticsearchURLs) > 0
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		URL:             c.DatabaseURL,
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.PostgresMaxConn,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Redis returns the client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		URL:      c.RedisURL,
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisPoolSize,
	}
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	t := tracing.DefaultConfig(ServiceName)
	t.Environment = c.Environment
	t.OTLPEndpoint = c.OTelEndpoint
	t.SampleRate = c.OTelSampleRate
	t.Enabled = c.OTelEnabled
	return t
}
