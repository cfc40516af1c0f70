package memstore

import (
	"context"
	"fmt"
	"sync"

	"brochure-backend/internal/apperrors"
)

type Blobs struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func NewBlobs(bucket string) *Blobs {
	return &Blobs{bucket: bucket, objects: make(map[string][]byte)}
}

func (b *Blobs) SignedURL(_ context.Context, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[path]; !ok {
		return "", apperrors.NotFound("object " + path)
	}
	return fmt.Sprintf("memory://%s/%s", b.bucket, path), nil
}

func (b *Blobs) CreateUploadURL(_ context.Context, path string) (string, error) {
	return fmt.Sprintf("memory://%s/upload/%s", b.bucket, path), nil
}

func (b *Blobs) Upload(_ context.Context, path, _ string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = append([]byte(nil), data...)
	return nil
}

func (b *Blobs) Delete(_ context.Context, paths ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range paths {
		delete(b.objects, p)
	}
	return nil
}

func (b *Blobs) Has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}
