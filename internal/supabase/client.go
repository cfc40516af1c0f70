package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"brochure-backend/internal/config"
)

// Client bundles the Supabase SDK client with the settings derived from config.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// Blobs returns the asset bucket as a blob store.
func (c *Client) Blobs() *StorageClient {
	return NewStorageClient(c.Supabase.Storage, c.Config.SupabaseURL, c.Config.SupabaseStorageBucket, c.Config.SignedURLTTL)
}
