// Package controller wires user actions to the note store, the query engine
// and a view, re-rendering after every state change.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/taigrr/jotter/internal/query"
	"github.com/taigrr/jotter/internal/store"
	"github.com/taigrr/jotter/internal/types"
)

// View displays a sequence of notes and the empty-state indicator.
type View interface {
	Render(notes []types.Note)
	SetEmptyState(empty bool)
}

// DeleteState is the state of the two-step delete flow.
type DeleteState int

const (
	Idle DeleteState = iota
	PendingConfirmation
)

func (s DeleteState) String() string {
	if s == PendingConfirmation {
		return "pending-confirmation"
	}
	return "idle"
}

// FormError reports invalid note form fields.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return "invalid note: " + strings.Join(e.Fields, ", ")
}

// Controller orchestrates the note store and a view. Like the store, it is
// meant to be driven from one goroutine.
type Controller struct {
	store    *store.Store
	view     View
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	searchTerm string
	tagFilter  string
	visible    []types.Note

	formOpen     bool
	pendingID    string
	deleteState  DeleteState
	pendingTitle string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Controller. The store must already be initialized.
func New(st *store.Store, view View, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		view:      view,
		logger:    slog.Default(),
		validate:  validator.New(),
		now:       time.Now,
		tagFilter: query.AllTags,
		visible:   []types.Note{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh re-runs the active filter against the authoritative collection,
// renders the result and recomputes the empty state.
func (c *Controller) Refresh() []types.Note {
	c.visible = query.Filter(c.store.Notes(), c.searchTerm, c.tagFilter)
	c.view.Render(c.visible)
	c.view.SetEmptyState(len(c.visible) == 0)
	return c.visible
}

// Visible returns the last rendered sequence.
func (c *Controller) Visible() []types.Note {
	return c.visible
}

// SearchTerm returns the active search term.
func (c *Controller) SearchTerm() string { return c.searchTerm }

// TagFilter returns the active tag filter.
func (c *Controller) TagFilter() string { return c.tagFilter }

// SetSearch changes the search term and re-renders.
func (c *Controller) SetSearch(term string) []types.Note {
	c.searchTerm = term
	return c.Refresh()
}

// SetFilter changes the tag filter and re-renders. An empty value means
// query.AllTags.
func (c *Controller) SetFilter(tag string) []types.Note {
	if tag == "" {
		tag = query.AllTags
	}
	c.tagFilter = tag
	return c.Refresh()
}

// OpenForm marks the creation form as open.
func (c *Controller) OpenForm() { c.formOpen = true }

// CloseForm closes the creation form without submitting.
func (c *Controller) CloseForm() { c.formOpen = false }

// FormOpen reports whether the creation form is open.
func (c *Controller) FormOpen() bool { return c.formOpen }

// ValidateForm checks the creation form fields.
func (c *Controller) ValidateForm(form types.NoteForm) error {
	err := c.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{}
	for _, f := range verrs {
		switch f.Tag() {
		case "required":
			fe.Fields = append(fe.Fields, strings.ToLower(f.Field())+" is required")
		case "oneof":
			fe.Fields = append(fe.Fields, fmt.Sprintf("%s must be one of: %s", strings.ToLower(f.Field()), f.Param()))
		default:
			fe.Fields = append(fe.Fields, strings.ToLower(f.Field())+" is invalid")
		}
	}
	return fe
}

// SubmitNote creates a note from form, stamps it with the current time,
// inserts it, re-renders the active filter and closes the form.
func (c *Controller) SubmitNote(form types.NoteForm) (types.Note, error) {
	if err := c.ValidateForm(form); err != nil {
		return types.Note{}, err
	}

	note := types.Note{
		ID:      c.store.NewID(),
		Title:   form.Title,
		Content: form.Content,
		Tag:     form.Tag,
		Date:    c.now().UTC().Truncate(time.Millisecond),
	}
	if err := c.store.Insert(note); err != nil {
		return types.Note{}, fmt.Errorf("failed to save note: %w", err)
	}
	c.logger.Info("note created", "id", note.ID, "tag", note.Tag)

	c.Refresh()
	c.formOpen = false
	return note, nil
}

// RequestDelete captures id and waits for confirmation. A second request
// while one is pending replaces the captured note. Unknown ids are ignored.
func (c *Controller) RequestDelete(id string) bool {
	n, ok := c.store.Get(id)
	if !ok {
		c.logger.Debug("delete request for unknown note", "id", id)
		return false
	}
	c.pendingID = n.ID
	c.pendingTitle = n.Title
	c.deleteState = PendingConfirmation
	return true
}

// RequestDeleteAt captures the note at position in the last rendered
// sequence. The position is resolved to an identifier immediately.
func (c *Controller) RequestDeleteAt(position int) bool {
	if position < 0 || position >= len(c.visible) {
		return false
	}
	return c.RequestDelete(c.visible[position].ID)
}

// DeleteState returns the state of the delete flow.
func (c *Controller) DeleteState() DeleteState {
	return c.deleteState
}

// PendingDelete returns the captured note id and title, if any.
func (c *Controller) PendingDelete() (id, title string, ok bool) {
	if c.deleteState != PendingConfirmation {
		return "", "", false
	}
	return c.pendingID, c.pendingTitle, true
}

// ConfirmDelete removes the captured note, re-renders and returns to Idle.
// With nothing captured it does nothing.
func (c *Controller) ConfirmDelete() (bool, error) {
	if c.deleteState != PendingConfirmation {
		return false, nil
	}
	id := c.pendingID
	c.clearPending()

	removed, err := c.store.Remove(id)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	if removed {
		c.logger.Info("note deleted", "id", id)
	}
	c.Refresh()
	return removed, nil
}

// CancelDelete drops the captured note and returns to Idle.
func (c *Controller) CancelDelete() {
	c.clearPending()
}

func (c *Controller) clearPending() {
	c.pendingID = ""
	c.pendingTitle = ""
	c.deleteState = Idle
}
