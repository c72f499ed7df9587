package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/jotter/internal/grammar"
	"github.com/taigrr/jotter/internal/query"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/types"
)

func (s *noteServer) handleCreate(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, CreateOutput, error) {
	form := types.NoteForm{
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		Tag:     types.Tag(strings.ToLower(strings.TrimSpace(input.Tag))),
	}

	var notice string
	if input.Fix && strings.TrimSpace(form.Content) != "" {
		fixed, err := grammar.FixDraft(ctx, s.app.grammar, form.Content)
		if err != nil {
			s.app.logger.Warn("grammar fix failed, saving draft as written", "error", err)
			notice = fmt.Sprintf("grammar fix failed: %v; content saved as written", err)
		} else {
			form.Content = fixed
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.app.ctrl.SubmitNote(form)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CreateOutput{}, err
	}
	loc, err := s.app.cfg.Location()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CreateOutput{}, err
	}
	return nil, CreateOutput{Note: summarize(note, 0, loc, true), Notice: notice}, nil
}

func (s *noteServer) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	tag := strings.ToLower(strings.TrimSpace(input.Tag))
	if tag == "" {
		tag = query.AllTags
	}
	if !query.ValidFilter(tag) {
		return &mcp.CallToolResult{IsError: true}, ListOutput{},
			fmt.Errorf("unknown tag %q: want all, work, personal, ideas or reminders", input.Tag)
	}

	s.mu.Lock()
	notes := query.Filter(s.app.store.Notes(), input.Search, tag)
	s.mu.Unlock()

	loc, err := s.app.cfg.Location()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}

	out := ListOutput{Notes: make([]NoteSummary, 0, len(notes)), Total: len(notes)}
	for i, n := range notes {
		out.Notes = append(out.Notes, summarize(n, i, loc, input.Full))
	}
	return nil, out, nil
}

func summarize(n types.Note, position int, loc *time.Location, full bool) NoteSummary {
	card := render.Present(n, position, loc)
	content := card.Short
	if full {
		content = card.Full
	}
	return NoteSummary{
		ID:          n.ID,
		Title:       n.Title,
		Content:     content,
		Truncated:   card.Truncated && !full,
		Tag:         string(n.Tag),
		Date:        n.Date.Format(time.RFC3339),
		DisplayDate: card.Date,
	}
}

func (s *noteServer) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	prefix := strings.TrimSpace(input.ID)

	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Success: false, ID: prefix},
			fmt.Errorf("deletion not confirmed: set confirm='yes' to proceed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := resolveNote(s.app.store.Notes(), prefix)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Success: false, ID: prefix}, err
	}

	s.app.ctrl.RequestDelete(note.ID)
	removed, err := s.app.ctrl.ConfirmDelete()
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Success: false, ID: note.ID}, err
	}
	return nil, DeleteOutput{Success: removed, ID: note.ID}, nil
}

func (s *noteServer) handleFix(ctx context.Context, req *mcp.CallToolRequest, input FixInput) (*mcp.CallToolResult, FixOutput, error) {
	fixed, err := s.app.grammar.Fix(ctx, input.Text)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, FixOutput{}, err
	}
	return nil, FixOutput{Text: fixed}, nil
}

func (s *noteServer) handleTags(ctx context.Context, req *mcp.CallToolRequest, input TagsInput) (*mcp.CallToolResult, TagsOutput, error) {
	s.mu.Lock()
	notes := s.app.store.Notes()
	s.mu.Unlock()

	return nil, TagsOutput{
		Tags:       query.CountTags(notes),
		TotalNotes: len(notes),
	}, nil
}
