package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type diskEntry struct {
	File        string    `json:"file"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
}

type diskIndex struct {
	Entries map[string]diskEntry `json:"entries"`
}

// DiskStore persists file binaries on disk under a data directory and keeps
// a JSON index with the original metadata. The index is rewritten atomically
// via a temp file on every mutation.
type DiskStore struct {
	mu sync.Mutex

	root      string
	dataDir   string
	indexPath string

	entries map[string]diskEntry
}

func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	s := &DiskStore{
		root:      root,
		dataDir:   filepath.Join(root, "data"),
		indexPath: filepath.Join(root, "index.json"),
		entries:   map[string]diskEntry{},
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, err
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DiskStore) Put(_ context.Context, name string, blob Blob) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}

	file := hashedName(name)
	path := filepath.Join(s.dataDir, file)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return err
	}
	s.entries[name] = diskEntry{
		File:        file,
		Size:        int64(len(blob.Data)),
		ContentType: blob.ContentType,
		ModTime:     blob.ModTime,
	}
	return s.persistIndexLocked()
}

func (s *DiskStore) Get(_ context.Context, name string) (Blob, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Blob{}, fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[name]
	if !ok {
		return Blob{}, ErrNotFound
	}
	raw, err := os.ReadFile(filepath.Join(s.dataDir, ent.File))
	if err != nil {
		if os.IsNotExist(err) {
			delete(s.entries, name)
			_ = s.persistIndexLocked()
			return Blob{}, ErrNotFound
		}
		return Blob{}, err
	}
	return Blob{
		Data:        append([]byte(nil), raw...),
		ContentType: ent.ContentType,
		ModTime:     ent.ModTime,
	}, nil
}

func (s *DiskStore) Delete(_ context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[name]
	if !ok {
		return nil
	}
	delete(s.entries, name)
	_ = os.Remove(filepath.Join(s.dataDir, ent.File))
	return s.persistIndexLocked()
}

func (s *DiskStore) loadIndex() error {
	raw, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var idx diskIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return err
	}
	if idx.Entries == nil {
		idx.Entries = map[string]diskEntry{}
	}
	s.entries = idx.Entries
	return nil
}

func (s *DiskStore) persistIndexLocked() error {
	raw, err := json.MarshalIndent(diskIndex{Entries: s.entries}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.indexPath)
}

func hashedName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".bin"
}
