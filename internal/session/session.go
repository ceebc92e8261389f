// Package session implements the single-document editing session: dirty
// tracking against the last persisted baseline, debounced autosave, a
// single-flight save coordinator and race-safe search lookups.
//
// A Session is created with New, started once with Start and torn down with
// Teardown. After Teardown no timer fires and no late save or search result
// touches the session's state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/draftpad/internal/model"
	"github.com/rcliao/draftpad/internal/textedit"
)

const (
	DefaultQuietPeriod    = 30 * time.Second
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultRelatedLimit   = 5
)

var (
	// ErrSessionClosed is returned by operations on a session that is not live.
	ErrSessionClosed = errors.New("session closed")
	// ErrSaveFailed wraps every persistence failure.
	ErrSaveFailed = errors.New("save failed")

	errNoFileStore = errors.New("no file store configured")
)

// Options configures a Session.
type Options struct {
	Files    FileStore
	Index    SearchIndex
	Notifier Notifier
	Clock    Clock
	Logger   *slog.Logger

	// QuietPeriod is the autosave debounce; zero means DefaultQuietPeriod.
	QuietPeriod time.Duration
	// SearchDebounce delays ScheduleSearch; zero means DefaultSearchDebounce.
	SearchDebounce time.Duration
	// RelatedLimit caps the related-files list; zero means DefaultRelatedLimit.
	RelatedLimit int
	// StrictSpans rejects out-of-range selections instead of clamping them.
	StrictSpans bool
}

type lifecycle int

const (
	stateNew lifecycle = iota
	stateStarting
	stateLive
	stateClosed
)

// Session owns the document being edited and every component acting on it.
type Session struct {
	id     string
	files  FileStore
	notify Notifier
	clock  Clock
	log    *slog.Logger
	strict bool

	mu      sync.Mutex
	state   lifecycle
	doc     model.Document
	preview bool

	saver    *saveCoordinator
	autosave *autosaveScheduler
	search   *queryClient
	related  *queryClient
}

// New builds an unstarted session.
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.RelatedLimit <= 0 {
		opts.RelatedLimit = DefaultRelatedLimit
	}

	entropy := rand.New(rand.NewSource(opts.Clock.Now().UnixNano()))
	id := ulid.MustNew(ulid.Timestamp(opts.Clock.Now()), entropy).String()

	s := &Session{
		id:     id,
		files:  opts.Files,
		notify: opts.Notifier,
		clock:  opts.Clock,
		log:    opts.Logger.With("session", id),
		strict: opts.StrictSpans,
	}
	s.saver = &saveCoordinator{s: s}
	s.autosave = &autosaveScheduler{s: s, deb: newDebouncer(opts.Clock), quiet: opts.QuietPeriod}
	s.search = newQueryClient("search", opts.Index, opts.Clock, s.log, opts.SearchDebounce, 0)
	s.related = newQueryClient("related", opts.Index, opts.Clock, s.log, opts.SearchDebounce, opts.RelatedLimit)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Start loads category/filename and seeds the related-files list.
// A missing or unreadable file starts a new, empty document.
func (s *Session) Start(ctx context.Context, category, filename string) error {
	s.mu.Lock()
	switch s.state {
	case stateStarting, stateLive:
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.id)
	case stateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = stateStarting
	s.mu.Unlock()

	doc := s.load(ctx, model.Identity{Category: category, Filename: filename})

	s.mu.Lock()
	if s.state != stateStarting {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.doc = doc
	s.state = stateLive
	s.mu.Unlock()

	s.log.Info("session started", "path", doc.Path(), "new", doc.LastPersistedAt == nil)
	s.related.seed(ctx, filename)
	return nil
}

// Teardown ends the session. Pending autosaves and debounced searches are
// cancelled; in-flight requests finish but their results are discarded.
// Calling Teardown more than once is harmless.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	wasDirty, path := s.doc.Dirty, s.doc.Path()
	s.state = stateClosed
	s.mu.Unlock()

	s.autosave.stop()
	s.search.close()
	s.related.close()
	s.log.Info("session ended", "path", path, "unsaved", wasDirty)
}

// Live reports whether the session has started and not been torn down.
func (s *Session) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateLive
}

// Wrap applies a prefix/suffix transform around span and feeds the result
// through Edit. The returned cursor is where the caret should be placed.
func (s *Session) Wrap(span model.SelectionSpan, prefix, suffix string) (textedit.Result, error) {
	s.mu.Lock()
	if s.state != stateLive {
		s.mu.Unlock()
		return textedit.Result{}, ErrSessionClosed
	}
	if s.strict {
		if err := textedit.CheckSpan(s.doc.Content, span); err != nil {
			s.mu.Unlock()
			return textedit.Result{}, err
		}
	}
	res := textedit.ApplyWrap(s.doc.Content, span, prefix, suffix)
	s.setContentLocked(res.Content)
	s.autosave.observe(s.snapshotLocked())
	s.mu.Unlock()
	return res, nil
}

// Action applies the named toolbar transform (bold, h1, wiki, ...).
func (s *Session) Action(name string, span model.SelectionSpan) (textedit.Result, error) {
	a, err := textedit.Lookup(name)
	if err != nil {
		return textedit.Result{}, err
	}
	return s.Wrap(span, a.Prefix, a.Suffix)
}

// Save persists the current content on user request.
func (s *Session) Save(ctx context.Context) (model.PersistResult, error) {
	return s.saver.save(ctx, model.SaveManual)
}

// Search runs an immediate lookup. applied is false when a newer query was
// issued before this one's response arrived.
func (s *Session) Search(ctx context.Context, text string) (results []model.SearchResult, applied bool, err error) {
	return s.search.run(ctx, text)
}

// ScheduleSearch debounces a lookup for text.
func (s *Session) ScheduleSearch(text string) {
	s.search.schedule(text)
}

// SearchResults returns the displayed search results.
func (s *Session) SearchResults() []model.SearchResult {
	return s.search.results()
}

// DisplayedQuery returns the query whose results SearchResults holds.
func (s *Session) DisplayedQuery() model.SearchQuery {
	return s.search.latest()
}

// RelatedFiles returns the related-files list seeded at Start.
func (s *Session) RelatedFiles() []model.RelatedFile {
	hits := s.related.results()
	out := make([]model.RelatedFile, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Related())
	}
	return out
}

// TogglePreview flips preview mode and returns the new value.
func (s *Session) TogglePreview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = !s.preview
	return s.preview
}

// Preview reports whether preview mode is on.
func (s *Session) Preview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// SetQuietPeriod changes the autosave debounce for subsequent edits.
func (s *Session) SetQuietPeriod(d time.Duration) {
	s.autosave.setQuiet(d)
}

// AutosavePending reports whether an autosave timer is armed.
func (s *Session) AutosavePending() bool {
	return s.autosave.deb.Pending()
}
