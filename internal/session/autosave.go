package session

import (
	"context"
	"sync"
	"time"

	"github.com/rcliao/draftpad/internal/model"
)

// autosaveScheduler debounces edits into a single automatic save.
type autosaveScheduler struct {
	s   *Session
	deb *debouncer

	mu    sync.Mutex
	quiet time.Duration
}

// observe re-arms the timer for a dirty, non-empty document and disarms it
// otherwise.
func (a *autosaveScheduler) observe(doc model.Document) {
	if !doc.Dirty || doc.Content == "" {
		a.deb.Cancel()
		return
	}
	a.mu.Lock()
	quiet := a.quiet
	a.mu.Unlock()
	a.deb.Arm(quiet, a.fire)
}

func (a *autosaveScheduler) fire() {
	res, err := a.s.saver.save(context.Background(), model.SaveAuto)
	switch {
	case err != nil:
		// Left dirty; the next edit or an explicit save retries.
	case res.Skipped:
		a.s.log.Debug("autosave skipped", "path", res.Path())
	default:
		a.s.log.Debug("autosaved", "path", res.Path(), "at", res.SavedAt)
	}
}

func (a *autosaveScheduler) setQuiet(d time.Duration) {
	if d <= 0 {
		d = DefaultQuietPeriod
	}
	a.mu.Lock()
	a.quiet = d
	a.mu.Unlock()
}

func (a *autosaveScheduler) stop() {
	a.deb.Stop()
}
