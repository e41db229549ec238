package store

import (
	"context"
	"encoding/json"
)

func (s *RecentStore) ensureLoadedFile(ctx context.Context) {
	s.loadOnce.Do(func() {
		if s.blobs == nil {
			return
		}
		blob, err := s.blobs.Get(ctx, recentBlobKey)
		if err != nil {
			return
		}
		var rows []RecentEntry
		if err := json.Unmarshal(blob.Data, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(rows) > MaxRecentEntries {
			rows = rows[:MaxRecentEntries]
		}
		s.entries = rows
	})
}

func (s *RecentStore) saveFile(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}
	s.mu.RLock()
	rows := make([]RecentEntry, len(s.entries))
	copy(rows, s.entries)
	s.mu.RUnlock()

	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, recentBlobKey, Blob{
		Data:        b,
		ContentType: "application/json",
	})
}

func (s *RecentStore) touchFile(ctx context.Context, entry RecentEntry) error {
	s.ensureLoadedFile(ctx)
	s.mu.Lock()
	s.entries = touchLocked(s.entries, entry)
	s.mu.Unlock()
	return s.saveFile(ctx)
}

func (s *RecentStore) listFile(ctx context.Context) ([]RecentEntry, error) {
	s.ensureLoadedFile(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecentEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *RecentStore) removeFile(ctx context.Context, name string) error {
	s.ensureLoadedFile(ctx)
	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()
	return s.saveFile(ctx)
}

func (s *RecentStore) renameFile(ctx context.Context, oldName, newName string) error {
	s.ensureLoadedFile(ctx)
	s.mu.Lock()
	found := false
	for i := range s.entries {
		if s.entries[i].Name == oldName {
			s.entries[i].Name = newName
			found = true
			break
		}
	}
	if found {
		// A pre-existing entry under the new name would now be a
		// duplicate; drop the older of the two.
		seen := false
		kept := s.entries[:0]
		for _, e := range s.entries {
			if e.Name == newName {
				if seen {
					continue
				}
				seen = true
			}
			kept = append(kept, e)
		}
		s.entries = kept
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	return s.saveFile(ctx)
}
