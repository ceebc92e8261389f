package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/draftpad/internal/chunker"
	"github.com/rcliao/draftpad/internal/model"
)

// timeFormat sorts lexically in time order, unlike RFC3339Nano.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const fileColumns = `id, category, filename, content, version, supersedes, created_at, deleted_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; Put reads then writes inside a transaction.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID is safe for concurrent use; the HTTP server calls Put from many
// goroutines.
func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id          TEXT PRIMARY KEY,
		category    TEXT NOT NULL,
		filename    TEXT NOT NULL,
		content     TEXT NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		supersedes  TEXT,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_files_path ON files(category, filename);
	CREATE INDEX IF NOT EXISTS idx_files_created ON files(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_files_deleted ON files(deleted_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id          TEXT PRIMARY KEY,
		file_id     TEXT NOT NULL REFERENCES files(id),
		seq         INTEGER NOT NULL,
		text        TEXT NOT NULL,
		start_line  INTEGER,
		end_line    INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);

	CREATE TABLE IF NOT EXISTS file_links (
		from_id    TEXT NOT NULL REFERENCES files(id),
		target     TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (from_id, target)
	);
	CREATE INDEX IF NOT EXISTS idx_links_target ON file_links(target);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.StoredFile, error) {
	if strings.TrimSpace(p.Category) == "" || strings.TrimSpace(p.Filename) == "" {
		return nil, fmt.Errorf("category and filename are required")
	}

	now := time.Now().UTC()
	id := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM files
		 WHERE category = ? AND filename = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, p.Category, p.Filename).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	switch {
	case err == nil:
		version = prevVersion + 1
		supersedes = &prevID
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("latest version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (id, category, filename, content, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Category, p.Filename, p.Content, version, supersedes, now.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}

	// Chunk the content
	chunks := chunker.Chunk(p.Content, chunker.DefaultOptions())
	for i, c := range chunks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks (id, file_id, seq, text, start_line, end_line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.newID(), id, i, c.Text, c.StartLine, c.EndLine)
		if err != nil {
			return nil, fmt.Errorf("insert chunk: %w", err)
		}
	}

	for _, target := range chunker.WikiLinks(p.Content) {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO file_links (from_id, target, created_at) VALUES (?, ?, ?)`,
			id, target, now.Format(timeFormat))
		if err != nil {
			return nil, fmt.Errorf("insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	f := &model.StoredFile{
		ID:           id,
		Category:     p.Category,
		Filename:     p.Filename,
		Content:      p.Content,
		Version:      version,
		LastModified: now,
		ChunkCount:   len(chunks),
	}
	if supersedes != nil {
		f.Supersedes = *supersedes
	}
	return f, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]model.StoredFile, error) {
	var query string
	var args []interface{}

	if p.History {
		query = `SELECT ` + fileColumns + `
				 FROM files WHERE category = ? AND filename = ? AND deleted_at IS NULL
				 ORDER BY version DESC`
		args = []interface{}{p.Category, p.Filename}
	} else if p.Version > 0 {
		query = `SELECT ` + fileColumns + `
				 FROM files WHERE category = ? AND filename = ? AND version = ? AND deleted_at IS NULL
				 LIMIT 1`
		args = []interface{}{p.Category, p.Filename, p.Version}
	} else {
		query = `SELECT ` + fileColumns + `
				 FROM files WHERE category = ? AND filename = ? AND deleted_at IS NULL
				 ORDER BY version DESC LIMIT 1`
		args = []interface{}{p.Category, p.Filename}
	}

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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("file %s/%s: %w", p.Category, p.Filename, model.ErrNotFound)
	}
	return files, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.StoredFile, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	// Build a query that returns only the latest version of each category+filename
	where := []string{"f.deleted_at IS NULL"}
	args := []interface{}{}

	if p.Category != "" {
		where = append(where, "f.category = ?")
		args = append(args, p.Category)
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.category, f.filename, f.content, f.version, f.supersedes, f.created_at, f.deleted_at
		FROM files f
		INNER JOIN (
			SELECT category, filename, MAX(version) AS max_ver
			FROM files WHERE deleted_at IS NULL
			GROUP BY category, filename
		) latest ON f.category = latest.category AND f.filename = latest.filename AND f.version = latest.max_ver
		WHERE %s
		ORDER BY f.created_at DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

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
		if p.NamesOnly {
			f.Content = ""
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			ids := `SELECT id FROM files WHERE category = ? AND filename = ?`
			if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_id IN (`+ids+`)`, p.Category, p.Filename); err != nil {
				return err
			}
			if _, err := s.db.ExecContext(ctx, `DELETE FROM file_links WHERE from_id IN (`+ids+`)`, p.Category, p.Filename); err != nil {
				return err
			}
			_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE category = ? AND filename = ?`, p.Category, p.Filename)
			return err
		}
		// Hard delete latest only
		id, err := s.resolveFileID(ctx, p.Category, p.Filename)
		if err != nil {
			return err
		}
		s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, id)
		s.db.ExecContext(ctx, `DELETE FROM file_links WHERE from_id = ?`, id)
		_, err = s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(timeFormat)
	if p.AllVersions {
		res, err := s.db.ExecContext(ctx,
			`UPDATE files SET deleted_at = ? WHERE category = ? AND filename = ? AND deleted_at IS NULL`,
			now, p.Category, p.Filename)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("file %s/%s: %w", p.Category, p.Filename, model.ErrNotFound)
		}
		return nil
	}

	// Soft-delete latest version only
	id, err := s.resolveFileID(ctx, p.Category, p.Filename)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE files SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// resolveFileID finds the latest file ID for a category/filename pair.
func (s *SQLiteStore) resolveFileID(ctx context.Context, category, filename string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM files WHERE category = ? AND filename = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, category, filename).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("file %s/%s: %w", category, filename, model.ErrNotFound)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row scanner) (model.StoredFile, error) {
	var f model.StoredFile
	var supersedes, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&f.ID, &f.Category, &f.Filename, &f.Content,
		&f.Version, &supersedes, &createdAt, &deletedAt,
	)
	if err != nil {
		return f, err
	}

	f.LastModified = parseTime(createdAt)
	if supersedes.Valid {
		f.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t := parseTime(deletedAt.String)
		f.DeletedAt = &t
	}
	return f, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
