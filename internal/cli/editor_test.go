package cli

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/draftpad/internal/model"
	"github.com/rcliao/draftpad/internal/session"
	"github.com/rcliao/draftpad/internal/store"
)

func newTestEditor(t *testing.T, content string) (*editorModel, *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if content != "" {
		_, err := st.Put(ctx, store.PutParams{Category: "notes", Filename: "draft.md", Content: content})
		require.NoError(t, err)
	}

	notifier := &statusNotifier{}
	sess := session.New(session.Options{Files: st, Index: st, Notifier: notifier})
	require.NoError(t, sess.Start(ctx, "notes", "draft.md"))
	t.Cleanup(sess.Teardown)

	m := newEditorModel(ctx, sess, notifier)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, st
}

func press(m *editorModel, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func typeText(m *editorModel, s string) {
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestCaretConversions(t *testing.T) {
	content := "héllo\nwörld\n\nend"
	cases := []struct {
		line, col, offset int
	}{
		{0, 0, 0},
		{0, 5, 5},
		{1, 0, 6},
		{1, 3, 9},
		{2, 0, 12},
		{3, 3, 16},
	}
	for _, c := range cases {
		assert.Equal(t, c.offset, caretOffset(content, c.line, c.col), "offset of %d:%d", c.line, c.col)
		line, col := caretPosition(content, c.offset)
		assert.Equal(t, [2]int{c.line, c.col}, [2]int{line, col}, "position of %d", c.offset)
	}

	assert.Equal(t, 5, caretOffset(content, 0, 99), "column clamps to line length")
	assert.Equal(t, 16, caretOffset(content, 9, 0), "line past end clamps to content end")
}

func TestEditor_TypingEditsSession(t *testing.T) {
	m, _ := newTestEditor(t, "")

	typeText(m, "hi")

	doc := m.sess.Document()
	assert.Equal(t, "hi", doc.Content)
	assert.True(t, doc.Dirty)
	assert.True(t, m.sess.AutosavePending())
	assert.Contains(t, m.View(), "Lines: 1 | Characters: 2")
}

func TestEditor_ActionAtCaret(t *testing.T) {
	m, _ := newTestEditor(t, "hello")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlB})

	assert.Equal(t, "hello****", m.sess.Document().Content)
	assert.Equal(t, "hello****", m.area.Value())
	assert.Equal(t, 7, m.caret())
}

func TestEditor_ActionOnMarkedRegion(t *testing.T) {
	m, _ := newTestEditor(t, "hello")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlAt})
	assert.Equal(t, 5, m.mark)
	press(m, tea.KeyMsg{Type: tea.KeyHome})
	press(m, tea.KeyMsg{Type: tea.KeyCtrlB})

	assert.Equal(t, "**hello**", m.sess.Document().Content)
	assert.Equal(t, 7, m.caret())
	assert.Equal(t, -1, m.mark)
}

func TestEditor_PreviewIsReadOnly(t *testing.T) {
	m, _ := newTestEditor(t, "# Title")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.True(t, m.sess.Preview())
	assert.Contains(t, m.View(), "[preview]")

	typeText(m, "x")
	assert.Equal(t, "# Title", m.sess.Document().Content)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.False(t, m.sess.Preview())
}

func TestEditor_ManualSave(t *testing.T) {
	m, st := newTestEditor(t, "")
	typeText(m, "draft")

	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(saveDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	m.Update(msg)

	assert.False(t, m.sess.Document().Dirty)
	assert.Contains(t, m.View(), savedText)

	files, err := st.Get(context.Background(), store.GetParams{Category: "notes", Filename: "draft.md"})
	require.NoError(t, err)
	assert.Equal(t, "draft", files[0].Content)
}

func TestEditor_SearchOnEnter(t *testing.T) {
	m, st := newTestEditor(t, "")
	_, err := st.Put(context.Background(), store.PutParams{Category: "zoo", Filename: "animals.md", Content: "# Animals\na zebra"})
	require.NoError(t, err)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	require.True(t, m.searching)
	typeText(m, "zebra")
	assert.Equal(t, "", m.sess.Document().Content, "search input must not reach the document")

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	hits := m.sess.SearchResults()
	require.Len(t, hits, 1)
	assert.Equal(t, "zoo/animals.md", hits[0].Path)
	assert.Contains(t, m.View(), "Search Results")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searching)
	assert.True(t, m.sess.Live())
}

func TestEditor_EscTearsDown(t *testing.T) {
	m, _ := newTestEditor(t, "")
	typeText(m, "unsaved")

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.sess.Live())
	assert.False(t, m.sess.AutosavePending())
}

func TestStatusNotifier(t *testing.T) {
	n := &statusNotifier{}
	n.SaveFailed(model.Identity{Category: "notes", Filename: "a.md"}, assert.AnError)
	msg, failed := n.get()
	assert.Equal(t, saveFailedText, msg)
	assert.True(t, failed)

	n.SaveSucceeded(model.PersistResult{})
	msg, failed = n.get()
	assert.Equal(t, savedText, msg)
	assert.False(t, failed)
}
