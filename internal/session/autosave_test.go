package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/draftpad/internal/model"
)

func TestAutosave_BurstProducesOneSave(t *testing.T) {
	h := startHarness(t, Options{QuietPeriod: 30 * time.Second})

	require.NoError(t, h.s.Edit("a"))
	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.s.Edit("ab"))
	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.s.Edit("abc"))

	h.clock.Advance(29 * time.Second)
	assert.Zero(t, h.files.putCount(), "quiet period counts from the last edit")

	h.clock.Advance(time.Second)
	require.Equal(t, 1, h.files.putCount())
	assert.Equal(t, "abc", h.files.lastPut().Content)
	assert.Equal(t, model.SaveAuto, h.files.lastPut().Kind)

	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.files.putCount())

	ok, failed := h.notify.counts()
	assert.Zero(t, ok, "autosave is silent")
	assert.Zero(t, failed)
	assert.False(t, h.s.Document().Dirty)
}

func TestAutosave_SavesContentAtFireTime(t *testing.T) {
	h := startHarness(t, Options{QuietPeriod: 30 * time.Second})
	require.NoError(t, h.s.Edit("first"))

	// A wrap goes through the same path and re-arms the timer.
	h.clock.Advance(10 * time.Second)
	_, err := h.s.Action("h1", model.Caret(0))
	require.NoError(t, err)

	h.clock.Advance(30 * time.Second)
	require.Equal(t, 1, h.files.putCount())
	assert.Equal(t, "# first", h.files.lastPut().Content)
}

func TestAutosave_NotArmedForCleanOrEmpty(t *testing.T) {
	h := newHarness(Options{})
	h.files.files["notes/todo.md"] = model.StoredFile{Content: "base"}
	require.NoError(t, h.s.Start(context.Background(), "notes", "todo.md"))
	defer h.s.Teardown()

	require.NoError(t, h.s.Edit("base!"))
	assert.True(t, h.s.AutosavePending())

	require.NoError(t, h.s.Edit("base"))
	assert.False(t, h.s.AutosavePending(), "reverting to the baseline disarms")

	require.NoError(t, h.s.Edit(""))
	assert.False(t, h.s.AutosavePending(), "empty buffers are not autosaved")

	h.clock.Advance(time.Hour)
	assert.Zero(t, h.files.putCount())
}

func TestAutosave_FailureRetriesOnNextCycle(t *testing.T) {
	h := startHarness(t, Options{QuietPeriod: 30 * time.Second})
	h.files.putErr = errBackend

	require.NoError(t, h.s.Edit("x"))
	h.clock.Advance(30 * time.Second)
	assert.Equal(t, 1, h.files.putCount())
	assert.True(t, h.s.Document().Dirty)
	assert.False(t, h.s.AutosavePending(), "no retry timer after a failure")

	h.files.putErr = nil
	require.NoError(t, h.s.Edit("xy"))
	h.clock.Advance(30 * time.Second)
	assert.Equal(t, 2, h.files.putCount())
	assert.False(t, h.s.Document().Dirty)
}

func TestAutosave_TeardownCancelsPendingTimer(t *testing.T) {
	h := startHarness(t, Options{QuietPeriod: 30 * time.Second})

	require.NoError(t, h.s.Edit("unsaved"))
	h.clock.Advance(10 * time.Second)
	h.s.Teardown()

	h.clock.Advance(time.Hour)
	assert.Zero(t, h.files.putCount())
	assert.False(t, h.s.AutosavePending())
}

func TestAutosave_SetQuietPeriod(t *testing.T) {
	h := startHarness(t, Options{QuietPeriod: 30 * time.Second})
	h.s.SetQuietPeriod(5 * time.Second)

	require.NoError(t, h.s.Edit("x"))
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 1, h.files.putCount())
}

func TestDebouncer_SupersededTimerIsNoop(t *testing.T) {
	clock := newFakeClock()
	d := newDebouncer(clock)
	var fired []string

	d.Arm(time.Second, func() { fired = append(fired, "a") })
	d.Arm(time.Second, func() { fired = append(fired, "b") })
	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"b"}, fired)

	d.Arm(time.Second, func() { fired = append(fired, "c") })
	d.Cancel()
	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"b"}, fired)

	d.Stop()
	d.Arm(time.Second, func() { fired = append(fired, "d") })
	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"b"}, fired)
	assert.False(t, d.Pending())
}

func TestAutosave_ConcurrentEditsLeaveTimerMatchingState(t *testing.T) {
	h := startHarness(t, Options{})

	for i := 0; i < 200; i++ {
		var wg sync.WaitGroup
		for _, content := range []string{"", "x"} {
			wg.Add(1)
			go func(content string) {
				defer wg.Done()
				assert.NoError(t, h.s.Edit(content))
			}(content)
		}
		wg.Wait()

		doc := h.s.Document()
		require.Equal(t, doc.Dirty, h.s.AutosavePending(), "iteration %d, content %q", i, doc.Content)
	}
}
