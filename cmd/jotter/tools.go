package main

import (
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/jotter/internal/query"
)

type (
	// CreateInput contains parameters for creating a note.
	CreateInput struct {
		Title   string `json:"title" jsonschema:"Title of the note"`
		Content string `json:"content,omitempty" jsonschema:"Body of the note"`
		Tag     string `json:"tag" jsonschema:"One of work, personal, ideas, reminders"`
		Fix     bool   `json:"fix,omitempty" jsonschema:"Correct grammar of the content before saving (default: false)"`
	}

	// CreateOutput contains the created note. Notice is set when the note
	// was saved but a requested step such as the grammar fix did not run.
	CreateOutput struct {
		Note   NoteSummary `json:"note"`
		Notice string      `json:"notice,omitempty"`
	}

	// ListInput contains parameters for listing notes.
	ListInput struct {
		Search string `json:"search,omitempty" jsonschema:"Case-insensitive substring matched against title and content"`
		Tag    string `json:"tag,omitempty" jsonschema:"Tag filter: all, work, personal, ideas or reminders (default: all)"`
		Full   bool   `json:"full,omitempty" jsonschema:"Return full content instead of the 150 character preview (default: false)"`
	}

	// NoteSummary is a note as returned by the tools.
	NoteSummary struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Content     string `json:"content"`
		Truncated   bool   `json:"truncated,omitempty"`
		Tag         string `json:"tag"`
		Date        string `json:"date"`
		DisplayDate string `json:"displayDate"`
	}

	// ListOutput contains matching notes, newest first.
	ListOutput struct {
		Notes []NoteSummary `json:"notes"`
		Total int           `json:"total"`
	}

	// DeleteInput contains parameters for deleting a note.
	DeleteInput struct {
		ID      string `json:"id" jsonschema:"Note id or unique id prefix"`
		Confirm string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// DeleteOutput contains the result of deleting a note.
	DeleteOutput struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}

	// FixInput contains text to correct.
	FixInput struct {
		Text string `json:"text" jsonschema:"Text to correct"`
	}

	// FixOutput contains the corrected text.
	FixOutput struct {
		Text string `json:"text"`
	}

	// TagsInput contains parameters for listing tags.
	TagsInput struct{}

	// TagsOutput contains per-tag note counts.
	TagsOutput struct {
		Tags       []query.TagCount `json:"tags"`
		TotalNotes int              `json:"totalNotes"`
	}
)

// noteServer serializes tool calls onto the single-threaded controller.
type noteServer struct {
	app *app
	mu  sync.Mutex
}

func newMCPServer(a *app) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jotter",
		Version: version,
	}, nil)
	registerTools(server, &noteServer{app: a})
	return server
}

func registerTools(server *mcp.Server, s *noteServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a note with a title, optional content and a tag (work, personal, ideas, reminders). New notes are placed first. With fix=true the content is grammar-corrected first; if correction fails the note is saved as written and a notice explains why.",
	}, s.handleCreate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List notes newest first, optionally filtered by a search term and a tag. Content is previewed at 150 characters unless full=true.",
	}, s.handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note by id or unique id prefix. Requires confirm='yes' for safety.",
	}, s.handleDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fix_grammar",
		Description: "Correct grammar, punctuation and spelling of text through Gemini without changing its meaning or style.",
	}, s.handleFix)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tags",
		Description: "List the note count for every tag.",
	}, s.handleTags)
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve notes to MCP clients over stdio",
		Long: `serve runs a Model Context Protocol server on stdin/stdout so any
MCP-compatible AI harness can create, list, delete and grammar-check notes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := newMCPServer(a).Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}
