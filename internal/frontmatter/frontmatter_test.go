package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/jotter/internal/types"
)

func sampleNote() types.Note {
	return types.Note{
		ID:      "3f2b9c1e-0000-4000-8000-000000000001",
		Title:   "Buy milk: 2%",
		Content: "Remember the store closes at 9.\n\n- oat\n- whole\n",
		Tag:     types.TagReminders,
		Date:    time.Date(2024, 3, 9, 17, 4, 0, 0, time.UTC),
	}
}

func TestStringify(t *testing.T) {
	doc, err := Stringify(sampleNote())
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}

	if !strings.HasPrefix(doc, "---\n") {
		t.Errorf("Stringify() should start with delimiter, got %q", doc)
	}
	for _, want := range []string{"id: 3f2b9c1e-", "title:", "Buy milk: 2%", "tag: reminders", "date: 2024-03-09T17:04:00Z"} {
		if !strings.Contains(doc, want) {
			t.Errorf("Stringify() missing %q in:\n%s", want, doc)
		}
	}
	if !strings.HasSuffix(doc, "---\nRemember the store closes at 9.\n\n- oat\n- whole\n") {
		t.Errorf("Stringify() body mismatch:\n%s", doc)
	}
	if strings.Contains(doc, "content:") {
		t.Error("Stringify() should not put content in the header")
	}
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := sampleNote()
		doc, err := Stringify(want)
		if err != nil {
			t.Fatalf("Stringify() error = %v", err)
		}
		got, err := Parse(doc)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got.ID != want.ID || got.Title != want.Title || got.Tag != want.Tag || got.Content != want.Content {
			t.Errorf("Parse() = %+v, want %+v", got, want)
		}
		if !got.Date.Equal(want.Date) {
			t.Errorf("Date = %v, want %v", got.Date, want.Date)
		}
	})

	t.Run("crlf line endings", func(t *testing.T) {
		got, err := Parse("---\r\ntitle: Win\r\ntag: work\r\n---\r\nbody\r\n")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got.Title != "Win" || got.Content != "body\n" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("empty header", func(t *testing.T) {
		got, err := Parse("---\n---\nonly body")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got.Content != "only body" || got.Title != "" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("header without body", func(t *testing.T) {
		got, err := Parse("---\ntitle: Solo\n---")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got.Title != "Solo" || got.Content != "" {
			t.Errorf("Parse() = %+v", got)
		}
	})

	t.Run("no frontmatter", func(t *testing.T) {
		for _, doc := range []string{"", "# Heading\n", "---\ntitle: open\n"} {
			if _, err := Parse(doc); !errors.Is(err, ErrNoFrontmatter) {
				t.Errorf("Parse(%q) error = %v, want ErrNoFrontmatter", doc, err)
			}
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse("---\ntitle: [broken\n---\n")
		if err == nil || errors.Is(err, ErrNoFrontmatter) {
			t.Errorf("Parse() error = %v, want yaml error", err)
		}
	})
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		note types.Note
		want string
	}{
		{"slug and short id", types.Note{ID: "abcdef0123456789", Title: "Hello, World!"}, "hello-world-abcdef01.md"},
		{"empty title", types.Note{ID: "abc", Title: "  "}, "note-abc.md"},
		{"no id", types.Note{Title: "Plan"}, "plan.md"},
		{"unicode only", types.Note{ID: "12345678", Title: "日本語"}, "note-12345678.md"},
		{
			"long title",
			types.Note{ID: "12345678", Title: strings.Repeat("word ", 20)},
			"word-word-word-word-word-word-word-word-word-wor-12345678.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.note); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteReadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	first := sampleNote()
	second := types.Note{ID: "99999999-aaaa", Title: "Idea", Content: "x", Tag: types.TagIdeas, Date: first.Date}

	paths, err := WriteDir(dir, []types.Note{first, second})
	if err != nil {
		t.Fatalf("WriteDir() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("WriteDir() wrote %d files, want 2", len(paths))
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# not a note\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("---\ntitle: skip\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	notes, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("ReadDir() returned %d notes, want 2", len(notes))
	}
	// os.ReadDir sorts by name: buy-milk-2 < idea
	if notes[0].ID != first.ID || notes[1].ID != second.ID {
		t.Errorf("ReadDir() order = %s, %s", notes[0].ID, notes[1].ID)
	}
}
