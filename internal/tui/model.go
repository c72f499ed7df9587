// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taigrr/jotter/internal/controller"
	"github.com/taigrr/jotter/internal/grammar"
	"github.com/taigrr/jotter/internal/query"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/theme"
	"github.com/taigrr/jotter/internal/types"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirm
)

// filterCycle is the order the filter key walks through.
var filterCycle = func() []string {
	out := []string{query.AllTags}
	for _, t := range types.Tags() {
		out = append(out, t.String())
	}
	return out
}()

// Model is the bubbletea model. The controller must have been created with
// the same render.List passed here as its view.
type Model struct {
	ctx       context.Context
	ctrl      *controller.Controller
	list      *render.List
	pref      *theme.Preference
	corrector grammar.Corrector
	logger    *slog.Logger

	mode     mode
	themed   theme.Mode
	styles   render.Styles
	keys     keyMap
	help     help.Model
	search   textinput.Model
	form     noteForm
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	status   string
	isError  bool
}

// Option configures a Model.
type Option func(*Model)

// WithCorrector enables grammar correction in the form.
func WithCorrector(c grammar.Corrector) Option {
	return func(m *Model) { m.corrector = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContext sets the context used for grammar requests.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// New creates the model and renders the initial list.
func New(ctrl *controller.Controller, list *render.List, pref *theme.Preference, opts ...Option) *Model {
	search := textinput.New()
	search.Placeholder = "Search notes..."
	search.Prompt = "/ "

	m := &Model{
		ctx:      context.Background(),
		ctrl:     ctrl,
		list:     list,
		pref:     pref,
		logger:   slog.Default(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		search:   search,
		form:     newNoteForm(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.themed = pref.Load()
	m.styles = theme.Styles(m.themed)
	ctrl.Refresh()
	m.syncViewport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.form.setWidth(msg.Width)
		m.search.Width = msg.Width - 4
		m.syncViewport()
		return m, nil

	case grammarFixedMsg:
		m.form.finishFix(msg)
		if msg.err != nil {
			m.logger.Warn("grammar fix failed", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	if m.mode == modeSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearStatus()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Toggle):
		m.list.Toggle(m.cursor)
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.New):
		m.form = newNoteForm()
		m.form.setWidth(m.width)
		m.ctrl.OpenForm()
		m.mode = modeForm
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		if m.ctrl.RequestDeleteAt(m.cursor) {
			m.mode = modeConfirm
		}
	case key.Matches(msg, m.keys.Theme):
		next, err := m.pref.Toggle()
		if err != nil {
			m.setError(fmt.Errorf("failed to save theme: %w", err))
		}
		m.themed = next
		m.styles = theme.Styles(next)
	case msg.String() == "esc" && m.ctrl.SearchTerm() != "":
		m.search.SetValue("")
		m.ctrl.SetSearch("")
	}
	m.syncViewport()
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeBrowse
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.SetSearch("")
		m.mode = modeBrowse
		m.syncViewport()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.ctrl.SearchTerm() {
		m.ctrl.SetSearch(m.search.Value())
		m.cursor = 0
		m.syncViewport()
	}
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.fixing {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.String() == "esc":
		m.ctrl.CloseForm()
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.form.setFocus(m.form.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.form.setFocus(m.form.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Fix):
		if m.corrector == nil {
			m.form.errs = []string{grammar.ErrNoKey.Error()}
			return m, nil
		}
		return m, m.form.startFix(m.ctx, m.corrector)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	note, err := m.ctrl.SubmitNote(m.form.value())
	if err != nil {
		var fe *controller.FormError
		if errors.As(err, &fe) {
			m.form.errs = fe.Fields
		} else {
			m.form.errs = []string{err.Error()}
			m.logger.Error("failed to save note", "error", err)
		}
		return m, nil
	}
	m.mode = modeBrowse
	m.cursor = max(slices.IndexFunc(m.ctrl.Visible(), func(n types.Note) bool { return n.ID == note.ID }), 0)
	m.setStatus("Saved " + note.Title)
	m.syncViewport()
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		_, title, _ := m.ctrl.PendingDelete()
		removed, err := m.ctrl.ConfirmDelete()
		switch {
		case err != nil:
			m.setError(err)
		case removed:
			m.setStatus("Deleted " + title)
		}
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelDelete()
		m.mode = modeBrowse
	}
	m.clampCursor()
	m.syncViewport()
	return m, nil
}

func (m *Model) cycleFilter() {
	i := slices.Index(filterCycle, m.ctrl.TagFilter())
	m.ctrl.SetFilter(filterCycle[(i+1)%len(filterCycle)])
	m.cursor = 0
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, m.list.Len()-1)
	m.cursor = max(m.cursor, 0)
}

func (m *Model) setStatus(s string) {
	m.status, m.isError = s, false
}

func (m *Model) setError(err error) {
	m.status, m.isError = err.Error(), true
}

func (m *Model) clearStatus() {
	m.status, m.isError = "", false
}

func (m *Model) header() string {
	filter := render.LookupTag(types.Tag(m.ctrl.TagFilter())).String()
	if m.ctrl.TagFilter() == query.AllTags {
		filter = "All"
	}
	left := m.styles.Title.Render("jotter") + "  " + m.styles.Muted.Render(fmt.Sprintf("%d notes · filter: %s · %s", m.list.Len(), filter, m.themed))
	if m.mode == modeSearch || m.ctrl.SearchTerm() != "" {
		left += "\n" + m.search.View()
	}
	return left
}

func (m *Model) footer() string {
	var b strings.Builder
	if m.status != "" {
		style := m.styles.Muted
		if m.isError {
			style = m.styles.Danger
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	m.help.Width = m.width
	if m.mode == modeForm {
		b.WriteString(m.help.View(formKeyMap{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// syncViewport re-renders the list into the viewport and scrolls the
// selected card into view.
func (m *Model) syncViewport() {
	m.clampCursor()
	h := m.height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer()) - 1
	m.viewport.Width = m.width
	m.viewport.Height = max(h, 3)

	if m.list.Empty() {
		m.viewport.SetContent(m.styles.RenderList(m.list, -1, m.width))
		m.viewport.GotoTop()
		return
	}

	top, bottom := 0, 0
	for i, c := range m.list.Cards()[:m.cursor+1] {
		top = bottom
		bottom += lipgloss.Height(m.styles.RenderCard(c, i == m.cursor, m.width))
	}
	m.viewport.SetContent(m.styles.RenderList(m.list, m.cursor, m.width))
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.form.view(m.styles, m.width), m.footer())
	case modeConfirm:
		_, title, _ := m.ctrl.PendingDelete()
		prompt := m.styles.Danger.Render(fmt.Sprintf("Delete %q? This cannot be undone.", title)) +
			"\n" + m.styles.Muted.Render("y to delete · n or esc to cancel")
		return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.styles.Card.Render(prompt))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.footer())
}
