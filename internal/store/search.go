package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/draftpad/internal/chunker"
	"github.com/rcliao/draftpad/internal/model"
)

const excerptLen = 160

// SearchParams holds parameters for searching files.
type SearchParams struct {
	Category string
	Query    string
	Limit    int
}

// Chunk is an indexed slice of a file.
type Chunk struct {
	ID        string `json:"id"`
	FileID    string `json:"file_id"`
	Seq       int    `json:"seq"`
	Text      string `json:"text"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// SearchResult wraps a file with its best matching chunk.
type SearchResult struct {
	model.StoredFile
	MatchChunk *Chunk `json:"match_chunk,omitempty"`
}

// Hit projects the result onto the search-index wire shape.
func (r SearchResult) Hit(query string) model.SearchResult {
	text := r.Content
	if r.MatchChunk != nil {
		text = r.MatchChunk.Text
	}
	return model.SearchResult{
		Title:    chunker.Title(r.Content, r.Filename),
		Path:     r.Category + "/" + r.Filename,
		Category: r.Category,
		Excerpt:  excerpt(text, query, excerptLen),
	}
}

// Search finds files whose content, filename or chunks match the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + likeEscaper.Replace(p.Query) + "%"

	where := []string{"f.deleted_at IS NULL"}
	args := []interface{}{}

	if p.Category != "" {
		where = append(where, "f.category = ?")
		args = append(args, p.Category)
	}

	// Match in file content, filename and chunk text; a file may match
	// several chunks, the first in sequence order wins.
	stmt := fmt.Sprintf(`
		SELECT f.id, f.category, f.filename, f.content, f.version, f.supersedes, f.created_at, f.deleted_at,
		       c.id, c.seq, c.text, c.start_line, c.end_line
		FROM files f
		INNER JOIN (
			SELECT category, filename, MAX(version) AS max_ver
			FROM files WHERE deleted_at IS NULL
			GROUP BY category, filename
		) latest ON f.category = latest.category AND f.filename = latest.filename AND f.version = latest.max_ver
		LEFT JOIN chunks c ON c.file_id = f.id AND c.text LIKE ? ESCAPE '\'
		WHERE %s AND (f.content LIKE ? ESCAPE '\' OR f.filename LIKE ? ESCAPE '\' OR c.id IS NOT NULL)
		ORDER BY f.created_at DESC, c.seq ASC`, strings.Join(where, " AND "))

	args = append([]interface{}{query}, args...)
	args = append(args, query, query)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	seen := map[string]bool{}
	for rows.Next() {
		var (
			f                   SearchResult
			chunkID, chunkText  sql.NullString
			chunkSeq            sql.NullInt64
			startLine, endLine  sql.NullInt64
			supersedes, deleted sql.NullString
			createdAt           string
		)
		err := rows.Scan(&f.ID, &f.Category, &f.Filename, &f.Content, &f.Version, &supersedes, &createdAt, &deleted,
			&chunkID, &chunkSeq, &chunkText, &startLine, &endLine)
		if err != nil {
			return nil, err
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		f.LastModified = parseTime(createdAt)
		f.Supersedes = supersedes.String
		if chunkID.Valid {
			f.MatchChunk = &Chunk{
				ID: chunkID.String, FileID: f.ID, Seq: int(chunkSeq.Int64), Text: chunkText.String,
				StartLine: int(startLine.Int64), EndLine: int(endLine.Int64),
			}
		}
		results = append(results, f)
		if len(results) == limit {
			break
		}
	}

	return results, rows.Err()
}

// likeEscaper makes %, _ and the escape character itself match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// excerpt returns up to n bytes of text around the first case-insensitive
// match of query, cut on rune boundaries.
func excerpt(text, query string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= n {
		return text
	}
	start := strings.Index(strings.ToLower(text), strings.ToLower(strings.TrimSpace(query)))
	if start < 0 {
		start = 0
	}
	start -= n / 4
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(text) {
		end = len(text)
		start = max(0, end-n)
	}
	for start > 0 && !utf8RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8RuneStart(text[end]) {
		end++
	}

	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
