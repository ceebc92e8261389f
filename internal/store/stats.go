package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string          `json:"db_path"`
	DBSizeBytes   int64           `json:"db_size_bytes"`
	TotalVersions int             `json:"total_versions"`
	ActiveFiles   int             `json:"active_files"`
	TotalChunks   int             `json:"total_chunks"`
	TotalLinks    int             `json:"total_links"`
	Categories    []CategoryStats `json:"categories"`
}

// CategoryStats holds per-category counts.
type CategoryStats struct {
	Category string `json:"category"`
	Versions int    `json:"versions"`
	Files    int    `json:"files"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&st.TotalVersions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT category || '/' || filename) FROM files WHERE deleted_at IS NULL`).Scan(&st.ActiveFiles)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&st.TotalChunks)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_links`).Scan(&st.TotalLinks)

	cats, err := s.Categories(ctx)
	if err != nil {
		return st, err
	}
	st.Categories = cats
	return st, nil
}

// Categories lists categories with live files, largest first.
func (s *SQLiteStore) Categories(ctx context.Context) ([]CategoryStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) as cnt, COUNT(DISTINCT filename) as files
		FROM files WHERE deleted_at IS NULL
		GROUP BY category ORDER BY cnt DESC, category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []CategoryStats{}
	for rows.Next() {
		var c CategoryStats
		if err := rows.Scan(&c.Category, &c.Versions, &c.Files); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
