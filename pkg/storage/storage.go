// Package storage defines the object storage abstraction for the media
// gateway. It exposes the backend primitives the gateway is built on:
// put/get/delete, list-by-prefix-with-cursor, and the multipart
// init/upload-part/complete/abort protocol. Backends (local filesystem,
// S3-compatible object storage such as AWS S3, Cloudflare R2, MinIO) must
// implement this interface.
package storage

import (
	"context"
	"io"
	"time"
)

const (
	// Delimiter separates path segments in object keys. A key ending in the
	// delimiter denotes a directory marker and is never written directly.
	Delimiter = "/"

	// MaxListLimit is the largest page size a single List call returns.
	MaxListLimit = 1000
)

// ObjectInfo describes a stored object. The key is the sole identity.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// CompletedPart pairs an uploaded part number with the integrity tag the
// backend returned for it at upload time.
type CompletedPart struct {
	PartNumber int32
	ETag       string
}

// ListOptions configures a single List call.
type ListOptions struct {
	// Prefix filters results to keys starting with this value, taken
	// literally.
	Prefix string

	// Delimiter groups keys into immediate child prefixes. Empty means a
	// flat listing across arbitrarily deep children.
	Delimiter string

	// Cursor resumes listing from a previous page's NextCursor.
	Cursor string

	// Limit caps the number of entries per page. Values outside
	// [1, MaxListLimit] are treated as MaxListLimit by callers.
	Limit int32
}

// ListPage is one page of a prefix listing.
type ListPage struct {
	Objects        []ObjectInfo
	CommonPrefixes []string
	NextCursor     string
	Truncated      bool
}

// Storage is the interface all object storage backends implement.
type Storage interface {
	// PutObject uploads an object under key, overwriting any existing
	// object at that key.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject retrieves an object. The returned ReadCloser must be closed
	// by the caller.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes an object. Deleting a nonexistent key is not an
	// error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks whether an object exists.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// List returns one page of keys under opts.Prefix. Pages are fetched
	// sequentially: the cursor from page N must be used to fetch page N+1.
	List(ctx context.Context, opts ListOptions) (*ListPage, error)

	// CreateMultipartUpload starts a multipart session and returns the
	// backend-issued upload ID.
	CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error)

	// UploadPart uploads one chunk of a multipart session and returns its
	// integrity tag. Parts may arrive out of order.
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, data io.Reader, size int64) (string, error)

	// CompleteMultipartUpload assembles the final object from parts in the
	// order given. It does not re-sort.
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []CompletedPart) error

	// AbortMultipartUpload discards a session and any uploaded parts.
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error

	// GenerateURL creates an access URL for the object.
	GenerateURL(ctx context.Context, key string, fileName string) (string, error)

	// Type returns the storage type identifier ("local" or "s3").
	Type() string
}
