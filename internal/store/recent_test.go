package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memBlobStore is an in-memory BlobStore for tests.
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string]Blob
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string]Blob)}
}

func (m *memBlobStore) Put(_ context.Context, name string, blob Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = blob
	return nil
}

func (m *memBlobStore) Get(_ context.Context, name string) (Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[name]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return blob, nil
}

func (m *memBlobStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

func TestRecentStoreMRUOrder(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "a.pdf"}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "b.pdf"}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "c.pdf"}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"c.pdf", "b.pdf", "a.pdf"}, names(entries))
}

func TestRecentStoreTouchDeduplicates(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "a.pdf", Size: 100}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "b.pdf"}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "a.pdf", Size: 200}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a.pdf", "b.pdf"}, names(entries))
	require.Equal(t, int64(200), entries[0].Size)
}

func TestRecentStoreCapEvictsOldest(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	ctx := context.Background()

	for i := 0; i < MaxRecentEntries+1; i++ {
		name := fmt.Sprintf("file-%02d.pdf", i)
		require.NoError(t, s.Touch(ctx, RecentEntry{Name: name}))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxRecentEntries)
	require.Equal(t, "file-20.pdf", entries[0].Name)
	for _, e := range entries {
		require.NotEqual(t, "file-00.pdf", e.Name)
	}
}

func TestRecentStorePersistsAcrossInstances(t *testing.T) {
	blobs := newMemBlobStore()
	ctx := context.Background()

	s1 := NewRecentStore(blobs)
	require.NoError(t, s1.Touch(ctx, RecentEntry{Name: "a.pdf"}))
	require.NoError(t, s1.Touch(ctx, RecentEntry{Name: "b.pdf"}))

	s2 := NewRecentStore(blobs)
	entries, err := s2.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b.pdf", "a.pdf"}, names(entries))
}

func TestRecentStoreRemove(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "a.pdf"}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "b.pdf"}))
	require.NoError(t, s.Remove(ctx, "a.pdf"))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b.pdf"}, names(entries))
}

func TestRecentStoreRenameKeepsPosition(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "a.pdf"}))
	require.NoError(t, s.Touch(ctx, RecentEntry{Name: "b.pdf"}))
	require.NoError(t, s.Rename(ctx, "a.pdf", "renamed.pdf"))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b.pdf", "renamed.pdf"}, names(entries))
}

func TestRecentStoreRenameMissing(t *testing.T) {
	s := NewRecentStore(newMemBlobStore())
	err := s.Rename(context.Background(), "missing.pdf", "other.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

func names(entries []RecentEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
