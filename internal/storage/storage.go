// Package storage provides object storage abstractions for fetching remote
// trace sources and publishing converted outputs.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
)

// ObjectStorage abstracts the trace file store. Implementations include S3
// and the local filesystem.
type ObjectStorage interface {
	// Upload copies a local file into object storage.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download copies an object to the local filesystem.
	Download(ctx context.Context, objectPath, localPath string) error

	// Exists reports whether an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
