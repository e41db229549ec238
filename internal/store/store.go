// Package store holds the persisted shared resources: the binary file cache
// keyed by file name and the recent-file list. Both are single-writer from
// the session's perspective; no locking beyond atomic single-key operations
// is required by callers.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Blob is a cached file binary with its original metadata.
type Blob struct {
	Data        []byte
	ContentType string
	ModTime     time.Time
}

// BlobStore is the storage port for uploaded file binaries. The core logic
// depends only on this interface; disk and S3 backends are provided.
type BlobStore interface {
	Put(ctx context.Context, name string, blob Blob) error
	Get(ctx context.Context, name string) (Blob, error)
	Delete(ctx context.Context, name string) error
}

// Rename moves a binary from oldName to newName without ever leaving the
// bytes unreachable: the new key is written before the old one is removed,
// so a failure at any step keeps at least one of the two names resolvable.
func Rename(ctx context.Context, s BlobStore, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	blob, err := s.Get(ctx, oldName)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, newName, blob); err != nil {
		return err
	}
	return s.Delete(ctx, oldName)
}
