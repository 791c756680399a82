// Package storage persists map images in object storage. BlobStore is
// the narrow interface the rest of the code sees; S3Store implements
// it. Uploader layers key generation and the best-effort batch
// semantics (partial upload survival, compensating deletes) on top.
package storage
