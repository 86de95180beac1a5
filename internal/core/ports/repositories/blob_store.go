package repositories

import "context"

// BlobStore stores opaque binary objects such as signature images.
type BlobStore interface {
	// PutBlob stores data under key.
	PutBlob(ctx context.Context, key string, data []byte, contentType string) error

	// GetBlob returns apperrors.ErrNotFound when the key does not exist.
	GetBlob(ctx context.Context, key string) ([]byte, error)
}
