package session

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/draftpad/internal/model"
)

// load fetches the document's persisted content. Any failure, including a
// missing file, yields an empty clean document.
func (s *Session) load(ctx context.Context, id model.Identity) model.Document {
	doc := model.Document{Identity: id}
	if s.files == nil {
		return doc
	}

	f, err := s.files.Fetch(ctx, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.log.Debug("new document", "path", id.Path())
		return doc
	case err != nil:
		s.log.Warn("load failed, starting empty", "path", id.Path(), "err", err)
		return doc
	}

	doc.Content = f.Content
	doc.Baseline = f.Content
	if f.Filename != "" {
		doc.Filename = f.Filename
	}
	if !f.LastModified.IsZero() {
		t := f.LastModified
		doc.LastPersistedAt = &t
	}
	return doc
}

// Document returns a snapshot of the current document.
func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Edit replaces the document content and recomputes the dirty flag.
// It performs no I/O. The autosave scheduler observes the new state under
// the session lock so edits are observed in the order they were applied.
func (s *Session) Edit(content string) error {
	s.mu.Lock()
	if s.state != stateLive {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.setContentLocked(content)
	s.autosave.observe(s.snapshotLocked())
	s.mu.Unlock()
	return nil
}

// markSaved records persisted as the new baseline. Content edited while the
// save was in flight stays dirty against it. It reports false, leaving the
// document untouched, once the session is no longer live.
func (s *Session) markSaved(persisted string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateLive {
		return false
	}
	s.doc.Baseline = persisted
	s.doc.Dirty = s.doc.Content != s.doc.Baseline
	s.doc.LastPersistedAt = &at
	return true
}

// setContentLocked is the only writer of doc.Content.
func (s *Session) setContentLocked(content string) {
	s.doc.Content = content
	s.doc.Dirty = s.doc.Content != s.doc.Baseline
}

func (s *Session) snapshotLocked() model.Document {
	doc := s.doc
	if doc.LastPersistedAt != nil {
		t := *doc.LastPersistedAt
		doc.LastPersistedAt = &t
	}
	return doc
}

// snapshot returns the document and whether the session is live.
func (s *Session) snapshot() (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), s.state == stateLive
}
