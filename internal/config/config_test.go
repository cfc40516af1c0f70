package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brochure-backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.QueueDriverMemory, cfg.QueueDriver)
	assert.Equal(t, 5*time.Minute, cfg.GenerationTimeout)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, int64(10<<20), cfg.AssetMaxBytes)
	assert.Equal(t, "product_a", cfg.RenderTemplate)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("QUEUE_DRIVER", "nats")
	t.Setenv("NATS_URL", "nats://queue:4222")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.QueueDriverNATS, cfg.QueueDriver)
	assert.Equal(t, "nats://queue:4222", cfg.NatsURL)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GENERATION_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			SupabaseJWTSecret:  "secret",
			StoreDriver:        config.StoreDriverPostgres,
			DatabaseURL:        "postgres://localhost/brochure",
			SupabaseURL:        "https://project.supabase.co",
			SupabaseServiceKey: "service-key",
			QueueDriver:        config.QueueDriverMemory,
			BackendBaseURL:     "http://localhost:8000",
			WorkerConcurrency:  1,
			AssetMaxBytes:      1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing jwt secret", func(c *config.Config) { c.SupabaseJWTSecret = "" }, "SUPABASE_JWT_SECRET"},
		{"postgres without database url", func(c *config.Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"postgres without supabase url", func(c *config.Config) { c.SupabaseURL = "" }, "SUPABASE_URL"},
		{"memory store needs no database", func(c *config.Config) {
			c.StoreDriver = config.StoreDriverMemory
			c.DatabaseURL = ""
			c.SupabaseURL = ""
			c.SupabaseServiceKey = ""
		}, ""},
		{"unknown store driver", func(c *config.Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"nats without url", func(c *config.Config) {
			c.QueueDriver = config.QueueDriverNATS
			c.NatsURL = ""
		}, "NATS_URL"},
		{"unknown queue driver", func(c *config.Config) { c.QueueDriver = "kafka" }, "QUEUE_DRIVER"},
		{"no workers", func(c *config.Config) { c.WorkerConcurrency = 0 }, "WORKER_CONCURRENCY"},
		{"no asset size", func(c *config.Config) { c.AssetMaxBytes = 0 }, "ASSET_MAX_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
