package storage

import "context"

// BlobStore stores and deletes immutable blobs by key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}
