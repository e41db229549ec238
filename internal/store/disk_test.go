package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDiskStorePutGetDelete(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	blob := Blob{
		Data:        []byte("%PDF-1.4 fake"),
		ContentType: "application/pdf",
		ModTime:     time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.Put(ctx, "report.pdf", blob))

	got, err := s.Get(ctx, "report.pdf")
	require.NoError(t, err)
	require.Equal(t, blob.Data, got.Data)
	require.Equal(t, "application/pdf", got.ContentType)

	require.NoError(t, s.Delete(ctx, "report.pdf"))
	_, err = s.Get(ctx, "report.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, "a.pdf", Blob{Data: []byte("aaa")}))

	s2, err := NewDiskStore(dir)
	require.NoError(t, err)
	got, err := s2.Get(ctx, "a.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("aaa"), got.Data)
}

func TestDiskStoreGetReturnsCopy(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.pdf", Blob{Data: []byte("abc")}))
	got, _ := s.Get(ctx, "a.pdf")
	got.Data[0] = 'x'

	again, err := s.Get(ctx, "a.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again.Data)
}

func TestRenameKeepsOneNameResolvable(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "A.pdf", Blob{Data: []byte("doc")}))
	require.NoError(t, Rename(ctx, s, "A.pdf", "B.pdf"))

	got, err := s.Get(ctx, "B.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("doc"), got.Data)

	_, err = s.Get(ctx, "A.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenameMissingSource(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	err = Rename(context.Background(), s, "missing.pdf", "other.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreManyEntries(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("file-%02d.pdf", i)
		require.NoError(t, s.Put(ctx, name, Blob{Data: []byte(name)}))
	}
	got, err := s.Get(ctx, "file-17.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("file-17.pdf"), got.Data)
}
