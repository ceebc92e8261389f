package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcliao/draftpad/internal/model"
)

// saveCoordinator serializes saves for the session's document. While one
// save is in flight, later requests are coalesced into a single follow-up
// save that persists whatever the content is when it starts.
type saveCoordinator struct {
	s *Session

	mu       sync.Mutex
	inFlight bool
	queued   *saveBatch
}

// saveBatch collects requests waiting behind the in-flight save.
type saveBatch struct {
	kind    model.SaveKind
	waiters int
	done    chan struct{}
	res     model.PersistResult
	err     error
}

func (c *saveCoordinator) save(ctx context.Context, kind model.SaveKind) (model.PersistResult, error) {
	c.mu.Lock()
	if c.inFlight {
		if c.queued == nil {
			c.queued = &saveBatch{kind: kind, done: make(chan struct{})}
		} else if kind == model.SaveManual {
			c.queued.kind = model.SaveManual
		}
		b := c.queued
		b.waiters++
		c.mu.Unlock()

		select {
		case <-b.done:
			return b.res, b.err
		case <-ctx.Done():
			return model.PersistResult{}, ctx.Err()
		}
	}
	c.inFlight = true
	c.mu.Unlock()

	res, err := c.run(ctx, kind)
	c.drain(context.WithoutCancel(ctx))
	return res, err
}

// drain runs coalesced follow-up saves until the queue is empty.
func (c *saveCoordinator) drain(ctx context.Context) {
	for {
		c.mu.Lock()
		b := c.queued
		c.queued = nil
		if b == nil {
			c.inFlight = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		c.s.log.Debug("running coalesced save", "kind", b.kind, "requests", b.waiters)
		b.res, b.err = c.run(ctx, b.kind)
		close(b.done)
	}
}

// saving reports whether a save is in flight.
func (c *saveCoordinator) saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *saveCoordinator) run(ctx context.Context, kind model.SaveKind) (model.PersistResult, error) {
	s := c.s
	doc, live := s.snapshot()
	if !live {
		return model.PersistResult{}, ErrSessionClosed
	}
	res := model.PersistResult{Identity: doc.Identity, Kind: kind}

	// An empty buffer is never autosaved; explicit saves always go through.
	if kind == model.SaveAuto && (!doc.Dirty || doc.Content == "") {
		res.Skipped = true
		return res, nil
	}

	req := model.SaveRequest{Content: doc.Content, Filename: doc.Filename, Kind: kind}
	if err := s.persist(ctx, doc.Identity, req); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSaveFailed, doc.Path(), err)
		if kind == model.SaveManual {
			s.log.Warn("save failed", "path", doc.Path(), "err", err)
			s.notify.SaveFailed(doc.Identity, err)
		} else {
			s.log.Debug("autosave failed", "path", doc.Path(), "err", err)
		}
		return model.PersistResult{}, err
	}

	res.Content = req.Content
	res.SavedAt = s.clock.Now()
	if !s.markSaved(req.Content, res.SavedAt) {
		s.log.Debug("session closed during save, result discarded", "path", doc.Path())
		return res, nil
	}

	s.log.Debug("saved", "path", doc.Path(), "kind", kind, "bytes", len(req.Content))
	if kind == model.SaveManual {
		s.notify.SaveSucceeded(res)
	}
	return res, nil
}

func (s *Session) persist(ctx context.Context, id model.Identity, req model.SaveRequest) error {
	if s.files == nil {
		return errNoFileStore
	}
	_, err := s.files.Persist(ctx, id, req)
	return err
}

// Saving reports whether a save is currently in flight.
func (s *Session) Saving() bool {
	return s.saver.saving()
}
