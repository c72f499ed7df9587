package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taigrr/jotter/internal/types"
)

// NotesKey is the fixed key holding the serialized note collection.
const NotesKey = "notes"

// Notes reads and writes the whole note collection as one JSON array.
type Notes struct {
	area   *Area
	logger *slog.Logger
}

// NewNotes creates a Notes adapter over area.
func NewNotes(area *Area, logger *slog.Logger) *Notes {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notes{area: area, logger: logger}
}

// Load returns the persisted collection. An absent, unreadable or malformed
// blob yields an empty collection; Load never fails. Individual notes that
// cannot be decoded are skipped, and unparseable dates become the zero time.
func (n *Notes) Load() []types.Note {
	data, ok, err := n.area.Get(NotesKey)
	if err != nil {
		n.logger.Warn("reading notes failed, starting empty", "error", err)
		return []types.Note{}
	}
	if !ok {
		n.logger.Debug("no stored notes")
		return []types.Note{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		n.logger.Warn("stored notes are malformed, starting empty", "error", err)
		return []types.Note{}
	}

	notes := make([]types.Note, 0, len(raw))
	for i, item := range raw {
		if string(item) == "null" {
			n.logger.Warn("skipping null stored note", "position", i)
			continue
		}
		note, err := decodeNote(item)
		if err != nil {
			n.logger.Warn("skipping malformed stored note", "position", i, "error", err)
			continue
		}
		notes = append(notes, note)
	}
	return notes
}

// storedNote mirrors types.Note with a loosely typed date.
type storedNote struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Tag     types.Tag       `json:"tag"`
	Date    json.RawMessage `json:"date"`
}

func decodeNote(data []byte) (types.Note, error) {
	var sn storedNote
	if err := json.Unmarshal(data, &sn); err != nil {
		return types.Note{}, err
	}
	return types.Note{
		ID:      sn.ID,
		Title:   sn.Title,
		Content: sn.Content,
		Tag:     sn.Tag,
		Date:    parseDate(sn.Date),
	}, nil
}

// dateLayouts are the ISO-8601 forms accepted for stored dates. Date-times
// without a zone are local time; date-only values are UTC.
var dateLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
}

// parseDate accepts an ISO-8601 string or epoch milliseconds. Anything else
// yields the zero time.
func parseDate(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var ms int64
		if err := json.Unmarshal(raw, &ms); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		loc := time.UTC
		if l.local {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Save serializes notes and replaces the stored blob.
func (n *Notes) Save(notes []types.Note) error {
	if notes == nil {
		notes = []types.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := n.area.Set(NotesKey, data); err != nil {
		return err
	}
	n.logger.Debug("notes saved", "count", len(notes))
	return nil
}
