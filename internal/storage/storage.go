package storage

import (
	"context"
	"io"
)

// BlobStore abstracts the blob backend holding the raw image bytes.
type BlobStore interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
}
