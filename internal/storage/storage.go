package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// Reader provides read access to stored objects
type Reader interface {
	// GetReader returns a reader for the object at bucket/key
	GetReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Exists checks if an object exists at bucket/key
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Metadata contains storage object metadata
type Metadata struct {
	Size        int64
	ContentType string
	ETag        string
	// Custom holds user-defined metadata with lowercased keys
	Custom map[string]string
}

// ReaderWithMetadata provides read access with metadata
type ReaderWithMetadata interface {
	Reader

	// GetMetadata returns metadata for the object at bucket/key
	GetMetadata(ctx context.Context, bucket, key string) (*Metadata, error)
}

// Writer stores objects durably
type Writer interface {
	// Put writes r to bucket/key. It returns only after the backend acknowledged the write.
	Put(ctx context.Context, bucket, key string, r io.Reader, meta Metadata) error

	// URI returns the fully qualified location of bucket/key
	URI(bucket, key string) string
}

// Store is a full read/write backend
type Store interface {
	ReaderWithMetadata
	Writer
}
