package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient stores project assets in a single Supabase Storage bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
	ttl     time.Duration
}

func NewStorageClient(client *storage.Client, supabaseURL, bucket string, ttl time.Duration) *StorageClient {
	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(supabaseURL, "/"),
		ttl:     ttl,
	}
}

// SignedURL returns a time-limited read URL for path.
func (s *StorageClient) SignedURL(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, path, int(s.ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	return s.absolute(resp.SignedURL), nil
}

// CreateUploadURL returns a URL the client can PUT the object to directly.
func (s *StorageClient) CreateUploadURL(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUploadUrl(s.bucket, path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload url for %s: %w", path, err)
	}
	return s.absolute(resp.Url), nil
}

func (s *StorageClient) Upload(ctx context.Context, path, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func (s *StorageClient) Delete(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

// The storage API answers with URLs relative to its /storage/v1 root.
func (s *StorageClient) absolute(url string) string {
	if strings.HasPrefix(url, "/") {
		return s.baseURL + "/storage/v1" + url
	}
	return url
}
