// Package types defines all data structures shared across jotter.
package types

import "time"

// Tag categorizes a note. Stored notes may carry any string; the creation
// form only accepts the four constants below.
type Tag string

const (
	TagWork      Tag = "work"
	TagPersonal  Tag = "personal"
	TagIdeas     Tag = "ideas"
	TagReminders Tag = "reminders"
)

// Tags returns the known tags in display order.
func Tags() []Tag {
	return []Tag{TagWork, TagPersonal, TagIdeas, TagReminders}
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagWork, TagPersonal, TagIdeas, TagReminders:
		return true
	}
	return false
}

func (t Tag) String() string { return string(t) }

type (
	// Note is a single user-authored record. Date is set once at creation.
	Note struct {
		ID      string    `json:"id,omitempty" yaml:"id"`
		Title   string    `json:"title" yaml:"title"`
		Content string    `json:"content" yaml:"-"`
		Tag     Tag       `json:"tag" yaml:"tag"`
		Date    time.Time `json:"date" yaml:"date"`
	}

	// NoteForm contains the fields submitted when creating a note.
	NoteForm struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content"`
		Tag     Tag    `json:"tag" validate:"required,oneof=work personal ideas reminders"`
	}
)
