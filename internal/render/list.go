package render

import (
	"time"

	"github.com/taigrr/jotter/internal/types"
)

// List is the displayed note list. It satisfies controller.View.
type List struct {
	loc      *time.Location
	cards    []Card
	expanded map[string]bool
	empty    bool
}

// NewList creates an empty list that formats dates in loc.
func NewList(loc *time.Location) *List {
	return &List{
		loc:      loc,
		expanded: make(map[string]bool),
		empty:    true,
	}
}

// Render replaces every card with one per note, in order. Cards that were
// expanded stay expanded if their note is still shown.
func (l *List) Render(notes []types.Note) {
	cards := make([]Card, len(notes))
	shown := make(map[string]bool, len(notes))
	for i, note := range notes {
		card := Present(note, i, l.loc)
		card.Expanded = card.Truncated && l.expanded[note.ID]
		cards[i] = card
		shown[note.ID] = true
	}
	for id := range l.expanded {
		if !shown[id] {
			delete(l.expanded, id)
		}
	}
	l.cards = cards
}

// SetEmptyState shows or hides the empty-state indicator.
func (l *List) SetEmptyState(empty bool) {
	l.empty = empty
}

// Empty reports whether the empty-state indicator is shown.
func (l *List) Empty() bool {
	return l.empty
}

// Cards returns the rendered cards.
func (l *List) Cards() []Card {
	return l.cards
}

// Len returns the number of rendered cards.
func (l *List) Len() int {
	return len(l.cards)
}

// CardAt returns the card at position.
func (l *List) CardAt(position int) (Card, bool) {
	if position < 0 || position >= len(l.cards) {
		return Card{}, false
	}
	return l.cards[position], true
}

// Toggle flips Read more/Show less on the card at position. Cards whose
// content fits are left alone. It reports whether anything changed.
func (l *List) Toggle(position int) bool {
	card, ok := l.CardAt(position)
	if !ok || !card.Truncated {
		return false
	}
	card.Expanded = !card.Expanded
	if card.Expanded {
		l.expanded[card.ID] = true
	} else {
		delete(l.expanded, card.ID)
	}
	l.cards[position] = card
	return true
}

// ExpandAll expands every truncated card.
func (l *List) ExpandAll() {
	for i := range l.cards {
		if l.cards[i].Truncated && !l.cards[i].Expanded {
			l.Toggle(i)
		}
	}
}
