// Package store holds the authoritative, newest-first note collection and
// persists it after every mutation.
package store

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/taigrr/jotter/internal/types"
)

// Persister loads and saves the whole collection at once.
type Persister interface {
	Load() []types.Note
	Save(notes []types.Note) error
}

// Store owns the authoritative collection. It is not safe for concurrent use;
// callers drive it from a single event loop.
type Store struct {
	persister Persister
	logger    *slog.Logger
	newID     func() string
	notes     []types.Note
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDFunc overrides identifier generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a Store. Call Initialize before use.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		logger:    slog.Default(),
		newID:     uuid.NewString,
		notes:     []types.Note{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh note identifier.
func (s *Store) NewID() string {
	return s.newID()
}

// Initialize loads the persisted collection and makes it authoritative.
// Notes stored without an identifier get one and the collection is saved
// straight away so the identifiers stay stable across runs. A failed save is
// logged and the in-memory identifiers are kept.
func (s *Store) Initialize() []types.Note {
	notes := s.persister.Load()
	if notes == nil {
		notes = []types.Note{}
	}
	assigned := 0
	for i := range notes {
		if notes[i].ID == "" {
			notes[i].ID = s.newID()
			assigned++
		}
	}
	if assigned > 0 {
		s.logger.Debug("assigned identifiers to stored notes", "count", assigned)
		if err := s.persister.Save(notes); err != nil {
			s.logger.Warn("failed to persist assigned identifiers", "count", assigned, "error", err)
		}
	}
	s.notes = notes
	return s.Notes()
}

// Insert prepends note and persists. On a failed write the collection is
// left as it was.
func (s *Store) Insert(note types.Note) error {
	if note.ID == "" {
		note.ID = s.newID()
	}
	prev := s.notes
	s.notes = append([]types.Note{note}, s.notes...)
	if err := s.persister.Save(s.notes); err != nil {
		s.notes = prev
		return err
	}
	s.logger.Debug("note inserted", "id", note.ID, "count", len(s.notes))
	return nil
}

// RemoveAt deletes the note at position and persists. Out-of-range positions
// are a no-op.
func (s *Store) RemoveAt(position int) error {
	if position < 0 || position >= len(s.notes) {
		s.logger.Debug("remove ignored, position out of range", "position", position, "count", len(s.notes))
		return nil
	}
	prev := s.notes
	s.notes = slices.Delete(slices.Clone(s.notes), position, position+1)
	if err := s.persister.Save(s.notes); err != nil {
		s.notes = prev
		return err
	}
	s.logger.Debug("note removed", "id", prev[position].ID, "position", position)
	return nil
}

// Remove deletes the note with id. It reports whether a note was found;
// unknown identifiers are a no-op.
func (s *Store) Remove(id string) (bool, error) {
	position := s.IndexOf(id)
	if position < 0 {
		return false, nil
	}
	if err := s.RemoveAt(position); err != nil {
		return false, err
	}
	return true, nil
}

// IndexOf returns the position of the note with id, or -1.
func (s *Store) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.notes, func(n types.Note) bool { return n.ID == id })
}

// Get returns the note with id.
func (s *Store) Get(id string) (types.Note, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return types.Note{}, false
	}
	return s.notes[i], true
}

// Notes returns a copy of the collection, newest first.
func (s *Store) Notes() []types.Note {
	return slices.Clone(s.notes)
}

// Len returns the number of notes.
func (s *Store) Len() int {
	return len(s.notes)
}
