package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/taigrr/jotter/internal/grammar"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/types"
)

const fixingPlaceholder = "⏳ Fixing grammar..."

type formField int

const (
	fieldTitle formField = iota
	fieldContent
	fieldTag
	fieldCount
)

// noteForm is the creation form: title, content and a tag picker.
type noteForm struct {
	title   textinput.Model
	content textarea.Model
	tags    []types.Tag
	tagIdx  int // -1 until a tag is picked
	focus   formField
	fixing  bool
	draft   string
	errs    []string
}

func newNoteForm() noteForm {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.Prompt = ""

	ta := textarea.New()
	ta.Placeholder = "Content"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.SetHeight(6)

	f := noteForm{title: ti, content: ta, tags: types.Tags(), tagIdx: -1}
	f.setFocus(fieldTitle)
	return f
}

func (f *noteForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	f.title.Blur()
	f.content.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldContent:
		f.content.Focus()
	}
}

func (f *noteForm) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.title.Width = w - 4
	f.content.SetWidth(w - 2)
}

func (f *noteForm) cycleTag(delta int) {
	n := len(f.tags)
	if f.tagIdx < 0 {
		if delta > 0 {
			f.tagIdx = 0
		} else {
			f.tagIdx = n - 1
		}
		return
	}
	f.tagIdx = (f.tagIdx + delta + n) % n
}

func (f noteForm) value() types.NoteForm {
	form := types.NoteForm{
		Title:   strings.TrimSpace(f.title.Value()),
		Content: f.content.Value(),
	}
	if f.tagIdx >= 0 {
		form.Tag = f.tags[f.tagIdx]
	}
	return form
}

// update routes keys and blink messages to the focused field.
func (f noteForm) update(msg tea.Msg) (noteForm, tea.Cmd) {
	if f.fixing {
		return f, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && f.focus == fieldTag {
		switch km.String() {
		case "left", "h", "up", "k":
			f.cycleTag(-1)
		case "right", "l", "down", "j", " ":
			f.cycleTag(1)
		case "1", "2", "3", "4":
			f.tagIdx = int(km.Runes[0] - '1')
		}
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	}
	return f, cmd
}

type grammarFixedMsg struct {
	text string
	err  error
}

// startFix swaps the content for a placeholder and returns the command
// that asks c for a correction of the current draft.
func (f *noteForm) startFix(ctx context.Context, c grammar.Corrector) tea.Cmd {
	draft := f.content.Value()
	if strings.TrimSpace(draft) == "" {
		f.errs = []string{grammar.ErrEmptyDraft.Error()}
		return nil
	}
	f.fixing = true
	f.draft = draft
	f.errs = nil
	f.content.SetValue(fixingPlaceholder)
	return func() tea.Msg {
		text, err := grammar.FixDraft(ctx, c, draft)
		return grammarFixedMsg{text: text, err: err}
	}
}

// finishFix puts the corrected text, or the original draft on failure,
// back into the content field.
func (f *noteForm) finishFix(msg grammarFixedMsg) {
	f.fixing = false
	text := msg.text
	if msg.err != nil {
		text = f.draft
		f.errs = []string{"grammar: " + msg.err.Error()}
	}
	f.draft = ""
	f.content.SetValue(text)
}

func (f noteForm) view(s render.Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("New note") + "\n\n")

	label := func(field formField, name string) string {
		if f.focus == field {
			return s.Control.Render("> " + name)
		}
		return s.Muted.Render("  " + name)
	}

	b.WriteString(label(fieldTitle, "Title") + "\n  " + f.title.View() + "\n\n")
	b.WriteString(label(fieldContent, "Content") + "\n" + f.content.View() + "\n\n")

	b.WriteString(label(fieldTag, "Tag") + "\n  ")
	opts := make([]string, len(f.tags))
	for i, tag := range f.tags {
		info := render.LookupTag(tag)
		mark := "( )"
		if i == f.tagIdx {
			mark = "(•)"
		}
		opts[i] = mark + " " + s.Tag(info)
	}
	b.WriteString(strings.Join(opts, "   "))

	for _, e := range f.errs {
		b.WriteString("\n" + s.Danger.Render(e))
	}
	return s.Card.Width(max(width-s.Card.GetHorizontalBorderSize(), 20)).Render(b.String())
}
