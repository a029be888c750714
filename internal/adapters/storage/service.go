// Package storage provides a domain-agnostic interface for S3-compatible
// object storage. The client is constructed once at process start and passed
// to consumers by reference, enabling test doubles.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the interface for object storage operations.
type ObjectStore interface {
	// PutObject uploads an object from an io.Reader under the given key.
	PutObject(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error

	// RemoveObject deletes a single object. Removing a key that does not
	// exist is not an error.
	RemoveObject(ctx context.Context, bucket, key string) error

	// RemoveObjects deletes a batch of objects. Missing keys are skipped.
	RemoveObjects(ctx context.Context, bucket string, keys []string) error

	// ListObjectKeys returns every object key under the given prefix,
	// paginating to exhaustion. An empty prefix listing is a no-op, not an
	// error.
	ListObjectKeys(ctx context.Context, bucket, prefix string) ([]string, error)

	// PresignedGetURL creates a presigned download URL for an object.
	PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)

	// PublicURL returns the unauthenticated URL for an object. Only valid
	// when the bucket policy allows anonymous reads.
	PublicURL(bucket, key string) string

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// ValidateContentType checks if the content type is allowed.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
