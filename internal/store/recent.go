package store

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// MaxRecentEntries caps the recent-files list; the oldest entry is
// evicted when a new name pushes the list past the cap.
const MaxRecentEntries = 20

// recentBlobKey is the fixed key the serialized list lives under when
// the store is backed by a BlobStore.
const recentBlobKey = "recent-files.json"

// IsReservedName reports whether name collides with a key the store keeps
// for its own bookkeeping. Uploads and renames must not use reserved names,
// or they would overwrite the recent-files list.
func IsReservedName(name string) bool {
	return name == recentBlobKey
}

// RecentEntry is one row of the recent-files list, most recently
// opened first.
type RecentEntry struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// RecentStore tracks the files a user opened most recently. It is
// backed either by a BlobStore (the list is one JSON blob under a
// fixed key) or by Postgres when a DSN is configured.
type RecentStore struct {
	blobs BlobStore
	db    *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	entries  []RecentEntry

	schemaOnce sync.Once
	schemaErr  error
}

func NewRecentStore(blobs BlobStore) *RecentStore {
	return &RecentStore{blobs: blobs}
}

func NewRecentStorePostgres(dsn string) (*RecentStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &RecentStore{db: db}, nil
}

// NewRecentStoreFromEnv prefers Postgres when dsn is non-empty and
// reachable, falling back to the blob backend otherwise.
func NewRecentStoreFromEnv(dsn string, blobs BlobStore) *RecentStore {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return NewRecentStore(blobs)
	}
	s, err := NewRecentStorePostgres(dsn)
	if err != nil {
		return NewRecentStore(blobs)
	}
	return s
}

// Touch records name as the most recently opened file. A name already
// on the list moves to the front without duplicating; a new name past
// the cap evicts the least recently opened entry.
func (s *RecentStore) Touch(ctx context.Context, entry RecentEntry) error {
	if s == nil {
		return nil
	}
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return nil
	}
	if entry.LastModified.IsZero() {
		entry.LastModified = time.Now()
	}
	if s.db != nil {
		return s.touchDB(ctx, entry)
	}
	return s.touchFile(ctx, entry)
}

// List returns the recent entries, most recently opened first.
func (s *RecentStore) List(ctx context.Context) ([]RecentEntry, error) {
	if s == nil {
		return nil, nil
	}
	if s.db != nil {
		return s.listDB(ctx)
	}
	return s.listFile(ctx)
}

func (s *RecentStore) Remove(ctx context.Context, name string) error {
	if s == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if s.db != nil {
		return s.removeDB(ctx, name)
	}
	return s.removeFile(ctx, name)
}

// Rename rewrites an entry in place, keeping its position in the list.
func (s *RecentStore) Rename(ctx context.Context, oldName, newName string) error {
	if s == nil {
		return nil
	}
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" || oldName == newName {
		return nil
	}
	if s.db != nil {
		return s.renameDB(ctx, oldName, newName)
	}
	return s.renameFile(ctx, oldName, newName)
}

func (s *RecentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// touchLocked applies the MRU/dedup/cap rules to an in-memory list.
func touchLocked(entries []RecentEntry, entry RecentEntry) []RecentEntry {
	out := make([]RecentEntry, 0, len(entries)+1)
	out = append(out, entry)
	for _, e := range entries {
		if e.Name == entry.Name {
			continue
		}
		out = append(out, e)
	}
	if len(out) > MaxRecentEntries {
		out = out[:MaxRecentEntries]
	}
	return out
}
