package store

import (
	"context"
	"strings"

	"github.com/rcliao/draftpad/internal/model"
)

// ExportAll returns all non-deleted file versions, optionally filtered by category.
func (s *SQLiteStore) ExportAll(ctx context.Context, category string) ([]model.StoredFile, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}

	query := `SELECT ` + fileColumns + `
	          FROM files WHERE ` + strings.Join(where, " AND ") + ` ORDER BY category, filename, version`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []model.StoredFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Import stores files from an export in order, so versions are replayed
// oldest first.
func (s *SQLiteStore) Import(ctx context.Context, files []model.StoredFile) (int, error) {
	imported := 0
	for _, f := range files {
		_, err := s.Put(ctx, PutParams{
			Category: f.Category,
			Filename: f.Filename,
			Content:  f.Content,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
