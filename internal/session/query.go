package session

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/draftpad/internal/model"
)

// queryClient issues lookups against the search index and keeps the result
// set of the most recently issued query. Every lookup is tagged with a
// strictly increasing sequence number; a response whose tag is no longer the
// latest is dropped.
type queryClient struct {
	name  string
	index SearchIndex
	log   *slog.Logger
	limit int
	delay time.Duration
	deb   *debouncer

	mu     sync.Mutex
	seq    uint64
	shown  model.SearchQuery
	hits   []model.SearchResult
	closed bool
}

func newQueryClient(name string, index SearchIndex, clock Clock, log *slog.Logger, delay time.Duration, limit int) *queryClient {
	return &queryClient{
		name:  name,
		index: index,
		log:   log.With("query", name),
		limit: limit,
		delay: delay,
		deb:   newDebouncer(clock),
	}
}

// issue tags text with the next sequence number.
func (q *queryClient) issue(text string) (model.SearchQuery, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return model.SearchQuery{}, false
	}
	q.seq++
	return model.SearchQuery{Text: text, Seq: q.seq}, true
}

// apply installs hits if query is still the latest issued one.
func (q *queryClient) apply(query model.SearchQuery, hits []model.SearchResult) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || query.Seq != q.seq {
		return false
	}
	q.shown = query
	q.hits = hits
	return true
}

func (q *queryClient) run(ctx context.Context, text string) ([]model.SearchResult, bool, error) {
	query, ok := q.issue(text)
	if !ok {
		return nil, false, ErrSessionClosed
	}
	if strings.TrimSpace(text) == "" || q.index == nil {
		return nil, q.apply(query, nil), nil
	}

	hits, err := q.index.Lookup(ctx, text)
	if err != nil {
		q.log.Warn("lookup failed", "q", text, "seq", query.Seq, "err", err)
		hits = nil
	}
	if q.limit > 0 && len(hits) > q.limit {
		hits = hits[:q.limit]
	}

	applied := q.apply(query, hits)
	if !applied {
		q.log.Debug("stale response dropped", "q", text, "seq", query.Seq)
	}
	return hits, applied, err
}

// schedule runs text after the debounce delay, superseding any pending one.
func (q *queryClient) schedule(text string) {
	q.deb.Arm(q.delay, func() {
		q.run(context.Background(), text)
	})
}

// seed queries on filename with its extension stripped.
func (q *queryClient) seed(ctx context.Context, filename string) {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	q.run(ctx, stem)
}

func (q *queryClient) results() []model.SearchResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.SearchResult, len(q.hits))
	copy(out, q.hits)
	return out
}

func (q *queryClient) latest() model.SearchQuery {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shown
}

func (q *queryClient) close() {
	q.deb.Stop()
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
