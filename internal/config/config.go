package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	QueueDriverNATS   = "nats"
	QueueDriverMemory = "memory"
)

type Config struct {
	// Server
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Entity store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Supabase
	SupabaseURL           string        `env:"SUPABASE_URL"`
	SupabaseServiceKey    string        `env:"SUPABASE_SERVICE_KEY"`
	SupabaseJWTSecret     string        `env:"SUPABASE_JWT_SECRET"`
	SupabaseStorageBucket string        `env:"SUPABASE_STORAGE_BUCKET" envDefault:"brochure-assets"`
	SignedURLTTL          time.Duration `env:"SIGNED_URL_TTL" envDefault:"1h"`
	AssetMaxBytes         int64         `env:"ASSET_MAX_BYTES" envDefault:"10485760"`

	// Brochure backend (AI copy + rendering)
	BackendBaseURL string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"120s"`
	RenderTemplate string        `env:"RENDER_TEMPLATE" envDefault:"product_a"`
	PalettePrimary string        `env:"PALETTE_PRIMARY" envDefault:"#2563eb"`
	PaletteAccent  string        `env:"PALETTE_ACCENT"`

	// Queue and workers
	QueueDriver       string        `env:"QUEUE_DRIVER" envDefault:"memory"`
	NatsURL           string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	QueueMaxDeliver   int           `env:"QUEUE_MAX_DELIVER" envDefault:"1"`
	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"5m"`
	JobStaleAfter     time.Duration `env:"JOB_STALE_AFTER" envDefault:"15m"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	// Rate limiting for job creation, per user
	JobRatePerMinute int `env:"JOB_RATE_PER_MINUTE" envDefault:"10"`

	// Shared secret for trusted server-to-server calls
	InternalAPIToken string `env:"INTERNAL_API_TOKEN"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`
}

// Parse reads the environment without validating it. Commands that need only a
// subset of the settings, such as migrate, start here.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.QueueDriver {
	case QueueDriverNATS:
		if c.NatsURL == "" {
			return fmt.Errorf("NATS_URL is required when QUEUE_DRIVER=nats")
		}
	case QueueDriverMemory:
	default:
		return fmt.Errorf("unknown QUEUE_DRIVER %q", c.QueueDriver)
	}

	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if c.AssetMaxBytes <= 0 {
		return fmt.Errorf("ASSET_MAX_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
