package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotExist is returned by Open and Stat when nothing is stored at the
// given path.
var ErrBlobNotExist = errors.New("blob does not exist")

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// BlobStore holds raw file bytes. Paths returned by Put are opaque to callers
// and are what gets persisted in the metadata table.
type BlobStore interface {
	// Put writes r under name and returns the path to persist.
	Put(ctx context.Context, name string, r io.Reader) (string, error)

	// Open returns a reader over the blob at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns the stored byte size of the blob at path.
	Stat(ctx context.Context, path string) (int64, error)

	// Remove deletes the blob at path. A missing blob is not an error.
	Remove(ctx context.Context, path string) error

	// List returns every blob in the store.
	List(ctx context.Context) ([]BlobInfo, error)
}
