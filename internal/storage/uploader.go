package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Blob is one piece of content handed to the uploader.
type Blob struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Uploader puts batches of blobs into a BlobStore under fresh keys and
// deletes them again when a later step of the operation fails.
type Uploader struct {
	store BlobStore
}

// NewUploader creates a new uploader
func NewUploader(store BlobStore) *Uploader {
	return &Uploader{store: store}
}

// Upload stores the blobs and returns the keys that made it. A failed
// individual upload is logged and skipped, mirroring the best-effort
// semantics of the submission flow; the caller decides whether zero
// survivors is fatal.
func (u *Uploader) Upload(ctx context.Context, blobs []Blob) []string {
	keys := make([]string, 0, len(blobs))
	for _, blob := range blobs {
		key := uuid.NewString() + blob.Ext
		if err := u.store.Put(ctx, key, blob.Data, blob.ContentType); err != nil {
			slog.Error("image upload failed", "key", key, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Remove deletes the given keys, attempting every one even when some
// fail, and returns the joined failures.
func (u *Uploader) Remove(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := u.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
