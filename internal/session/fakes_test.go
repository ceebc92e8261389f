package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rcliao/draftpad/internal/model"
)

// fakeClock runs timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

// fakeFiles is an in-memory FileStore. When gated, each Persist call
// announces itself on entered and blocks until release receives a value.
type fakeFiles struct {
	mu       sync.Mutex
	files    map[string]model.StoredFile
	puts     []model.SaveRequest
	fetchErr error
	putErr   error

	// A non-nil fetchGate blocks Fetch after it signals on fetching.
	fetchGate chan struct{}
	fetching  chan struct{}

	gated    bool
	entered  chan string
	release  chan struct{}
	inFlight int
	maxIn    int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		files:   map[string]model.StoredFile{},
		entered: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (f *fakeFiles) Fetch(ctx context.Context, id model.Identity) (*model.StoredFile, error) {
	if f.fetchGate != nil {
		f.fetching <- struct{}{}
		<-f.fetchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	sf, ok := f.files[id.Path()]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &sf, nil
}

func (f *fakeFiles) Persist(ctx context.Context, id model.Identity, req model.SaveRequest) (*model.StoredFile, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxIn {
		f.maxIn = f.inFlight
	}
	gated := f.gated
	f.mu.Unlock()

	if gated {
		f.entered <- req.Content
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	f.puts = append(f.puts, req)
	if f.putErr != nil {
		return nil, f.putErr
	}
	sf := model.StoredFile{Category: id.Category, Filename: req.Filename, Content: req.Content}
	f.files[id.Path()] = sf
	return &sf, nil
}

func (f *fakeFiles) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func (f *fakeFiles) lastPut() model.SaveRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[len(f.puts)-1]
}

// fakeIndex answers lookups from a map; a gated query blocks until its
// channel is closed.
type fakeIndex struct {
	mu      sync.Mutex
	results map[string][]model.SearchResult
	gates   map[string]chan struct{}
	calls   []string
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{results: map[string][]model.SearchResult{}, gates: map[string]chan struct{}{}}
}

func (f *fakeIndex) Lookup(ctx context.Context, q string) ([]model.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q]
	res, err := f.results[q], f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeIndex) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeIndex) called(q string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == q {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	mu        sync.Mutex
	succeeded []model.PersistResult
	failed    []error
}

func (n *recordingNotifier) SaveSucceeded(res model.PersistResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, res)
}

func (n *recordingNotifier) SaveFailed(_ model.Identity, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, err)
}

func (n *recordingNotifier) counts() (ok, failed int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.succeeded), len(n.failed)
}

var errBackend = errors.New("backend unavailable")

type harness struct {
	s      *Session
	clock  *fakeClock
	files  *fakeFiles
	index  *fakeIndex
	notify *recordingNotifier
}

func newHarness(opts Options) *harness {
	h := &harness{
		clock:  newFakeClock(),
		files:  newFakeFiles(),
		index:  newFakeIndex(),
		notify: &recordingNotifier{},
	}
	opts.Clock = h.clock
	opts.Files = h.files
	opts.Index = h.index
	opts.Notifier = h.notify
	h.s = New(opts)
	return h
}
