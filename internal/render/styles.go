package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EmptyMessage is shown when no card is rendered.
const EmptyMessage = "No notes found"

// Palette holds the colors of one theme.
type Palette struct {
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	Border    lipgloss.Color
	Selected  lipgloss.Color
	Danger    lipgloss.Color
	TagColors map[string]lipgloss.Color
}

// Styles turns a List into terminal text.
type Styles struct {
	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	Title        lipgloss.Style
	Body         lipgloss.Style
	Control      lipgloss.Style
	Date         lipgloss.Style
	Empty        lipgloss.Style
	Danger       lipgloss.Style
	Muted        lipgloss.Style
	tagColors    map[string]lipgloss.Color
	defaultTag   lipgloss.Style
}

// NewStyles builds styles from p.
func NewStyles(p Palette) Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	return Styles{
		Card:         card,
		SelectedCard: card.BorderForeground(p.Selected),
		Title:        lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		Body:         lipgloss.NewStyle().Foreground(p.Text),
		Control:      lipgloss.NewStyle().Foreground(p.Accent).Underline(true),
		Date:         lipgloss.NewStyle().Foreground(p.Muted),
		Empty:        lipgloss.NewStyle().Foreground(p.Muted).Italic(true).Padding(1, 2),
		Danger:       lipgloss.NewStyle().Foreground(p.Danger).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(p.Muted),
		tagColors:    p.TagColors,
		defaultTag:   lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// Tag styles a tag by its class.
func (s Styles) Tag(t TagInfo) string {
	style := s.defaultTag
	if c, ok := s.tagColors[t.Class]; ok {
		style = lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return style.Render(t.String())
}

// RenderCard renders one card at the given outer width. width <= 0 means
// no wrapping.
func (s Styles) RenderCard(c Card, selected bool, width int) string {
	box := s.Card
	if selected {
		box = s.SelectedCard
	}
	if width > 0 {
		box = box.Width(width - box.GetHorizontalBorderSize())
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(c.Title))
	if c.ID != "" {
		b.WriteString(" " + s.Muted.Render(ShortID(c.ID)))
	}
	if body := c.Body(); body != "" {
		b.WriteString("\n" + s.Body.Render(body))
	}
	if ctl := c.Control(); ctl != "" {
		b.WriteString("\n" + s.Control.Render(ctl))
	}
	b.WriteString("\n" + s.Tag(c.Tag) + "  " + s.Date.Render(c.Date))

	return box.Render(b.String())
}

// RenderList renders every card of l, or the empty-state message.
// selected is the highlighted position, -1 for none.
func (s Styles) RenderList(l *List, selected, width int) string {
	if l.Empty() {
		return s.Empty.Render(EmptyMessage)
	}
	parts := make([]string, 0, l.Len())
	for _, c := range l.Cards() {
		parts = append(parts, s.RenderCard(c, c.Position == selected, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ShortID returns the first 8 characters of an identifier.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
