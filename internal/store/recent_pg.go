package store

import (
	"context"
)

func (s *RecentStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS recent_files (
  name TEXT PRIMARY KEY,
  size BIGINT NOT NULL DEFAULT 0,
  last_modified TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  touched_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_recent_files_touched_at ON recent_files (touched_at DESC);
`)
	})
	return s.schemaErr
}

func (s *RecentStore) touchDB(ctx context.Context, entry RecentEntry) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO recent_files (name, size, last_modified, touched_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (name)
DO UPDATE SET size=EXCLUDED.size,
  last_modified=EXCLUDED.last_modified,
  touched_at=NOW()`,
		entry.Name, entry.Size, entry.LastModified)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
DELETE FROM recent_files
WHERE name NOT IN (
  SELECT name FROM recent_files ORDER BY touched_at DESC LIMIT $1
)`, MaxRecentEntries)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *RecentStore) listDB(ctx context.Context) ([]RecentEntry, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT name, size, last_modified
FROM recent_files
ORDER BY touched_at DESC
LIMIT $1`, MaxRecentEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentEntry, 0, MaxRecentEntries)
	for rows.Next() {
		var e RecentEntry
		if err := rows.Scan(&e.Name, &e.Size, &e.LastModified); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *RecentStore) removeDB(ctx context.Context, name string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM recent_files WHERE name = $1`, name)
	return err
}

func (s *RecentStore) renameDB(ctx context.Context, oldName, newName string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `DELETE FROM recent_files WHERE name = $1`, newName)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE recent_files SET name = $2 WHERE name = $1`, oldName, newName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
