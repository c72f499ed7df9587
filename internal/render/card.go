// Package render projects notes into display cards and terminal text.
package render

import (
	"strings"
	"time"
	"unicode"

	"github.com/taigrr/jotter/internal/types"
)

const (
	// MaxLength is the number of runes shown before a card collapses.
	MaxLength = 150
	// Ellipsis marks collapsed content.
	Ellipsis = "..."

	ReadMore = "Read more"
	ShowLess = "Show less"

	// DateLayout matches en-US 2-digit day/month, numeric year, hour:minute.
	DateLayout = "01/02/2006, 03:04 PM"
)

// TagInfo is the presentation of a tag.
type TagInfo struct {
	Icon  string
	Label string
	Class string
}

var tagTable = map[types.Tag]TagInfo{
	types.TagWork:      {Icon: "💼", Label: "Work", Class: "tag-work"},
	types.TagPersonal:  {Icon: "👤", Label: "Personal", Class: "tag-personal"},
	types.TagIdeas:     {Icon: "💡", Label: "Ideas", Class: "tag-ideas"},
	types.TagReminders: {Icon: "🔔", Label: "Reminders", Class: "tag-reminders"},
}

// LookupTag returns the presentation of tag. Unknown tags show the raw value
// with no icon or class.
func LookupTag(tag types.Tag) TagInfo {
	if info, ok := tagTable[tag]; ok {
		return info
	}
	return TagInfo{Label: string(tag)}
}

// String renders the tag as "icon label".
func (t TagInfo) String() string {
	if t.Icon == "" {
		return t.Label
	}
	return t.Icon + " " + t.Label
}

// Truncate returns the collapsed form of content and whether it was cut.
// Leading whitespace is dropped; content longer than MaxLength runes keeps
// its first MaxLength runes followed by Ellipsis.
func Truncate(content string) (string, bool) {
	trimmed := strings.TrimLeftFunc(content, unicode.IsSpace)
	runes := []rune(trimmed)
	if len(runes) <= MaxLength {
		return trimmed, false
	}
	return string(runes[:MaxLength]) + Ellipsis, true
}

// FormatDate formats t in loc. A nil loc means the local zone.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Card is the rendered form of one note.
type Card struct {
	// ID is what the delete trigger reports.
	ID string
	// Position is the index within the sequence passed to Render.
	Position int

	Title     string
	Full      string
	Short     string
	Truncated bool
	Expanded  bool
	Tag       TagInfo
	Date      string
}

// Present derives the card for note at position.
func Present(note types.Note, position int, loc *time.Location) Card {
	short, truncated := Truncate(note.Content)
	return Card{
		ID:        note.ID,
		Position:  position,
		Title:     note.Title,
		Full:      note.Content,
		Short:     short,
		Truncated: truncated,
		Tag:       LookupTag(note.Tag),
		Date:      FormatDate(note.Date, loc),
	}
}

// Body returns the content currently displayed.
func (c Card) Body() string {
	if c.Expanded {
		return c.Full
	}
	return c.Short
}

// Control returns the expand/collapse label, or "" when content fits.
func (c Card) Control() string {
	switch {
	case !c.Truncated:
		return ""
	case c.Expanded:
		return ShowLess
	default:
		return ReadMore
	}
}
