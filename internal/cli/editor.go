package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/draftpad/internal/model"
	"github.com/rcliao/draftpad/internal/session"
	"github.com/rcliao/draftpad/internal/textedit"
)

const (
	savedText      = "File saved successfully!"
	saveFailedText = "Failed to save file. Please try again."
	sidebarWidth   = 34
	refreshEvery   = 250 * time.Millisecond
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dirtyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	hitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1)
	sidebarStyle = lipgloss.NewStyle().Width(sidebarWidth).Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("240"))
)

// statusNotifier receives manual-save outcomes from the session.
type statusNotifier struct {
	mu     sync.Mutex
	msg    string
	failed bool
}

func (n *statusNotifier) SaveSucceeded(model.PersistResult) { n.set(savedText, false) }

func (n *statusNotifier) SaveFailed(model.Identity, error) { n.set(saveFailedText, true) }

func (n *statusNotifier) set(msg string, failed bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg, n.failed = msg, failed
}

func (n *statusNotifier) get() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg, n.failed
}

type editorKeys struct {
	Save    key.Binding
	Preview key.Binding
	Search  key.Binding
	Mark    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = editorKeys{
	Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Preview: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "preview")),
	Search:  key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "search")),
	Mark:    key.NewBinding(key.WithKeys("ctrl+@"), key.WithHelp("ctrl+space", "mark")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
}

// actionKeys maps toolbar actions to shortcuts. Ctrl+I is Tab in a
// terminal, so italic lives on Ctrl+T.
var actionKeys = []struct {
	binding key.Binding
	action  string
}{
	{key.NewBinding(key.WithKeys("ctrl+b")), "bold"},
	{key.NewBinding(key.WithKeys("ctrl+t")), "italic"},
	{key.NewBinding(key.WithKeys("alt+c")), "code"},
	{key.NewBinding(key.WithKeys("alt+1")), "h1"},
	{key.NewBinding(key.WithKeys("alt+2")), "h2"},
	{key.NewBinding(key.WithKeys("alt+3")), "h3"},
	{key.NewBinding(key.WithKeys("alt+l")), "list"},
	{key.NewBinding(key.WithKeys("ctrl+k")), "link"},
	{key.NewBinding(key.WithKeys("ctrl+w")), "wiki"},
}

type saveDoneMsg struct {
	res model.PersistResult
	err error
}

type refreshMsg time.Time

// editorModel is the bubbletea front end of a session.
type editorModel struct {
	ctx      context.Context
	sess     *session.Session
	notifier *statusNotifier

	area      textarea.Model
	query     textinput.Model
	searching bool
	mark      int

	width, height int
	message       string
}

func newEditorModel(ctx context.Context, sess *session.Session, notifier *statusNotifier) *editorModel {
	ta := textarea.New()
	ta.Placeholder = "Start writing..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(sess.Document().Content)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "Search content..."
	ti.Prompt = "/ "

	return &editorModel{
		ctx:      ctx,
		sess:     sess,
		notifier: notifier,
		area:     ta,
		query:    ti,
		mark:     -1,
		width:    100,
		height:   30,
	}
}

func (m *editorModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case refreshMsg:
		// Autosaves and debounced searches land on their own goroutines.
		return m, refreshTick()

	case saveDoneMsg:
		m.message = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.searching {
		m.query, cmd = m.query.Update(msg)
	} else {
		m.area, cmd = m.area.Update(msg)
	}
	return m, cmd
}

func (m *editorModel) layout() {
	m.area.SetWidth(max(20, m.width-sidebarWidth-3))
	m.area.SetHeight(max(3, m.height-4))
	m.query.Width = sidebarWidth - 4
}

func (m *editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.sess.Teardown()
		return m, tea.Quit
	case key.Matches(msg, keys.Save):
		m.message = ""
		return m, m.saveCmd()
	case key.Matches(msg, keys.Preview):
		if m.sess.TogglePreview() {
			m.area.Blur()
		} else if !m.searching {
			return m, m.area.Focus()
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Back):
		if m.mark >= 0 {
			m.mark = -1
			m.message = ""
			return m, nil
		}
		m.sess.Teardown()
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.area.Blur()
		return m, m.query.Focus()
	}

	if m.sess.Preview() {
		return m, nil
	}

	if key.Matches(msg, keys.Mark) {
		m.mark = m.caret()
		m.message = "Mark set"
		return m, nil
	}
	for _, a := range actionKeys {
		if key.Matches(msg, a.binding) {
			m.applyAction(a.action)
			return m, nil
		}
	}

	before := m.area.Value()
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if after := m.area.Value(); after != before {
		m.sess.Edit(after)
		m.message = ""
		m.notifier.set("", false)
	}
	return m, cmd
}

func (m *editorModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.query.Blur()
		if m.sess.Preview() {
			return m, nil
		}
		return m, m.area.Focus()
	case tea.KeyEnter:
		return m, m.searchCmd(m.query.Value())
	}

	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if after := m.query.Value(); after != before {
		m.sess.ScheduleSearch(after)
	}
	return m, cmd
}

func (m *editorModel) saveCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		res, err := sess.Save(ctx)
		return saveDoneMsg{res: res, err: err}
	}
}

func (m *editorModel) searchCmd(text string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		sess.Search(ctx, text)
		return refreshMsg(time.Now())
	}
}

// applyAction wraps the marked region, or the caret, with a toolbar action.
func (m *editorModel) applyAction(name string) {
	caret := m.caret()
	span := model.Caret(caret)
	if m.mark >= 0 {
		span = model.SelectionSpan{Start: m.mark, End: caret}
		m.mark = -1
	}

	res, err := m.sess.Action(name, span)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
	m.setContent(res.Content, res.Cursor)
}

func (m *editorModel) caret() int {
	info := m.area.LineInfo()
	return caretOffset(m.area.Value(), m.area.Line(), info.StartColumn+info.ColumnOffset)
}

func (m *editorModel) setContent(content string, cursor int) {
	m.area.SetValue(content)
	line, col := caretPosition(content, cursor)
	for i := 0; m.area.Line() > line && i < utf8.RuneCountInString(content)+1; i++ {
		m.area.CursorUp()
	}
	m.area.SetCursor(col)
}

// caretOffset converts a line/column caret into a rune offset.
func caretOffset(content string, line, col int) int {
	off := 0
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		n := utf8.RuneCountInString(l)
		if i == line {
			return off + min(max(col, 0), n)
		}
		off += n + 1
	}
	return utf8.RuneCountInString(content)
}

// caretPosition converts a rune offset into a line/column caret.
func caretPosition(content string, offset int) (line, col int) {
	i := 0
	for _, r := range content {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		i++
	}
	return line, col
}

func (m *editorModel) View() string {
	doc := m.sess.Document()

	header := titleStyle.Render("draftpad") + "  " + doc.Path()
	if doc.Dirty {
		header += dirtyStyle.Render(" ●")
	}
	if m.sess.Preview() {
		header += dimStyle.Render("  [preview]")
	}

	var body string
	if m.sess.Preview() {
		body = renderPreview(doc.Content, m.width-sidebarWidth-3, m.height-4)
	} else {
		body = m.area.View()
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), " ", body)
	return lipgloss.JoinVertical(lipgloss.Left, header, main, m.statusBar(doc))
}

func (m *editorModel) sidebar() string {
	var b strings.Builder
	b.WriteString(m.query.View())
	b.WriteString("\n")

	if hits := m.sess.SearchResults(); len(hits) > 0 {
		b.WriteString("\n" + headingStyle.Render("Search Results") + "\n")
		for _, h := range hits {
			b.WriteString(hitStyle.Render(h.Title) + "\n")
			b.WriteString(dimStyle.Render(h.Path) + "\n")
			if h.Excerpt != "" {
				b.WriteString(truncate(h.Excerpt, sidebarWidth*2) + "\n")
			}
		}
	}

	if related := m.sess.RelatedFiles(); len(related) > 0 {
		b.WriteString("\n" + headingStyle.Render("Related Files") + "\n")
		for _, r := range related {
			b.WriteString(hitStyle.Render(r.Title) + " " + dimStyle.Render(r.Category) + "\n")
		}
	}

	return sidebarStyle.Height(max(1, m.height-2)).Render(b.String())
}

func (m *editorModel) statusBar(doc model.Document) string {
	counts := textedit.Stats(doc.Content)
	left := fmt.Sprintf("Lines: %d | Characters: %d", counts.Lines, counts.Characters)

	var state string
	switch msg, failed := m.notifier.get(); {
	case m.sess.Saving():
		state = "Saving..."
	case m.message != "":
		state = m.message
	case failed:
		state = errorStyle.Render(msg)
	case msg != "":
		state = msg
	case doc.LastPersistedAt != nil:
		state = "Saved " + doc.LastPersistedAt.Local().Format(time.Kitchen)
	}

	right := "Ctrl+S Save | Ctrl+E Preview | Ctrl+F Search | Esc Back"
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(state)-lipgloss.Width(right)-6)
	return statusStyle.Width(m.width).Render(left + "  " + state + strings.Repeat(" ", gap) + right)
}

func renderPreview(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			lines[i] = headingStyle.Render(l)
		}
	}
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
