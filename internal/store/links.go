package store

import (
	"context"
	"path"
)

// LinkRef names a file on either end of a wiki link.
type LinkRef struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
}

// LinkSet holds the wiki links of a file's latest version and the files
// whose latest version links to it.
type LinkSet struct {
	Category  string    `json:"category"`
	Filename  string    `json:"filename"`
	Outgoing  []string  `json:"outgoing"`
	Backlinks []LinkRef `json:"backlinks"`
}

// Links returns the outgoing [[wiki]] links and backlinks of a file.
func (s *SQLiteStore) Links(ctx context.Context, category, filename string) (*LinkSet, error) {
	id, err := s.resolveFileID(ctx, category, filename)
	if err != nil {
		return nil, err
	}

	set := &LinkSet{Category: category, Filename: filename, Outgoing: []string{}, Backlinks: []LinkRef{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT target FROM file_links WHERE from_id = ? ORDER BY target`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			rows.Close()
			return nil, err
		}
		set.Outgoing = append(set.Outgoing, target)
	}
	rows.Close()

	stem := filename[:len(filename)-len(path.Ext(filename))]
	rows, err = s.db.QueryContext(ctx, `
		SELECT DISTINCT f.category, f.filename
		FROM file_links l
		JOIN files f ON f.id = l.from_id
		INNER JOIN (
			SELECT category, filename, MAX(version) AS max_ver
			FROM files WHERE deleted_at IS NULL
			GROUP BY category, filename
		) latest ON f.category = latest.category AND f.filename = latest.filename AND f.version = latest.max_ver
		WHERE f.deleted_at IS NULL AND f.id != ? AND l.target IN (?, ?, ?, ?)
		ORDER BY f.category, f.filename`,
		id, stem, filename, path.Join(category, stem), path.Join(category, filename))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref LinkRef
		if err := rows.Scan(&ref.Category, &ref.Filename); err != nil {
			return nil, err
		}
		set.Backlinks = append(set.Backlinks, ref)
	}
	return set, rows.Err()
}
