package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/draftpad/internal/model"
)

type searchOutcome struct {
	hits    []model.SearchResult
	applied bool
}

func TestSearch_LateResponseIsDropped(t *testing.T) {
	h := startHarness(t, Options{})
	h.index.results["cat"] = []model.SearchResult{{Title: "Cats", Path: "pets/cats.md"}}
	h.index.results["category"] = []model.SearchResult{{Title: "Categories", Path: "meta/categories.md"}}
	gate := make(chan struct{})
	h.index.gates["cat"] = gate

	slow := make(chan searchOutcome, 1)
	go func() {
		hits, applied, _ := h.s.Search(context.Background(), "cat")
		slow <- searchOutcome{hits, applied}
	}()
	require.Eventually(t, func() bool { return h.index.called("cat") }, time.Second, time.Millisecond)

	hits, applied, err := h.s.Search(context.Background(), "category")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, hits, 1)

	close(gate)
	late := <-slow
	assert.False(t, late.applied)
	assert.Len(t, late.hits, 1)

	shown := h.s.SearchResults()
	require.Len(t, shown, 1)
	assert.Equal(t, "Categories", shown[0].Title)
	assert.Equal(t, "category", h.s.DisplayedQuery().Text)
}

func TestSearch_BlankQueryShortCircuits(t *testing.T) {
	h := startHarness(t, Options{})
	h.index.results["go"] = []model.SearchResult{{Title: "Go"}}

	_, _, err := h.s.Search(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, h.s.SearchResults(), 1)
	calls := h.index.callCount()

	hits, applied, err := h.s.Search(context.Background(), "   \t")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, hits)
	assert.Empty(t, h.s.SearchResults())
	assert.Equal(t, calls, h.index.callCount(), "no lookup for blank text")
}

func TestSearch_BlankQuerySupersedesInFlight(t *testing.T) {
	h := startHarness(t, Options{})
	h.index.results["slow"] = []model.SearchResult{{Title: "Slow"}}
	gate := make(chan struct{})
	h.index.gates["slow"] = gate

	done := make(chan searchOutcome, 1)
	go func() {
		hits, applied, _ := h.s.Search(context.Background(), "slow")
		done <- searchOutcome{hits, applied}
	}()
	require.Eventually(t, func() bool { return h.index.called("slow") }, time.Second, time.Millisecond)

	_, _, err := h.s.Search(context.Background(), "")
	require.NoError(t, err)
	close(gate)

	assert.False(t, (<-done).applied)
	assert.Empty(t, h.s.SearchResults())
}

func TestSearch_FailureDegradesToNoResults(t *testing.T) {
	h := startHarness(t, Options{})
	h.index.results["x"] = []model.SearchResult{{Title: "X"}}
	_, _, err := h.s.Search(context.Background(), "x")
	require.NoError(t, err)

	h.index.err = errBackend
	hits, applied, err := h.s.Search(context.Background(), "x")
	assert.ErrorIs(t, err, errBackend)
	assert.True(t, applied)
	assert.Empty(t, hits)
	assert.Empty(t, h.s.SearchResults())
}

func TestSearch_AfterTeardown(t *testing.T) {
	h := startHarness(t, Options{})
	h.s.Teardown()
	_, applied, err := h.s.Search(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, applied)
}

func TestSearch_ResponseAfterTeardownIsDropped(t *testing.T) {
	h := startHarness(t, Options{})
	h.index.results["x"] = []model.SearchResult{{Title: "X"}}
	gate := make(chan struct{})
	h.index.gates["x"] = gate

	done := make(chan searchOutcome, 1)
	go func() {
		hits, applied, _ := h.s.Search(context.Background(), "x")
		done <- searchOutcome{hits, applied}
	}()
	require.Eventually(t, func() bool { return h.index.called("x") }, time.Second, time.Millisecond)

	h.s.Teardown()
	close(gate)
	assert.False(t, (<-done).applied)
	assert.Empty(t, h.s.SearchResults())
}

func TestScheduleSearch_Debounces(t *testing.T) {
	h := startHarness(t, Options{SearchDebounce: 300 * time.Millisecond})
	h.index.results["abc"] = []model.SearchResult{{Title: "ABC"}}
	base := h.index.callCount()

	for _, q := range []string{"a", "ab", "abc"} {
		h.s.ScheduleSearch(q)
		h.clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, base, h.index.callCount())

	h.clock.Advance(200 * time.Millisecond)
	assert.Equal(t, base+1, h.index.callCount())
	assert.True(t, h.index.called("abc"))
	assert.False(t, h.index.called("ab"))
	require.Len(t, h.s.SearchResults(), 1)
}

func TestScheduleSearch_CancelledByTeardown(t *testing.T) {
	h := startHarness(t, Options{})
	base := h.index.callCount()

	h.s.ScheduleSearch("later")
	h.s.Teardown()
	h.clock.Advance(time.Minute)
	assert.Equal(t, base, h.index.callCount())
}

func TestRelatedFiles_SeededFromFilenameStem(t *testing.T) {
	h := newHarness(Options{})
	var hits []model.SearchResult
	for i := 0; i < 8; i++ {
		hits = append(hits, model.SearchResult{Title: fmt.Sprintf("t%d", i), Category: "projects"})
	}
	h.index.results["roadmap.v2"] = hits

	require.NoError(t, h.s.Start(context.Background(), "projects", "roadmap.v2.md"))
	defer h.s.Teardown()

	related := h.s.RelatedFiles()
	require.Len(t, related, DefaultRelatedLimit)
	assert.Equal(t, "t0", related[0].Title)
	assert.Equal(t, "projects", related[0].Category)

	// The explicit search list is independent of the related list.
	assert.Empty(t, h.s.SearchResults())
}

func TestRelatedFiles_NoExtension(t *testing.T) {
	h := newHarness(Options{RelatedLimit: 2})
	h.index.results["README"] = []model.SearchResult{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	require.NoError(t, h.s.Start(context.Background(), "docs", "README"))
	defer h.s.Teardown()

	assert.Len(t, h.s.RelatedFiles(), 2)
}
