// Package frontmatter converts notes to and from Markdown documents with a
// YAML frontmatter header.
package frontmatter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/taigrr/jotter/internal/types"
	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

// ErrNoFrontmatter is returned by Parse for documents without a header.
var ErrNoFrontmatter = errors.New("document has no frontmatter")

// Stringify renders note as a Markdown document. The body is the note's
// content verbatim.
func Stringify(note types.Note) (string, error) {
	yamlBytes, err := yaml.Marshal(note)
	if err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}
	return delimiter + string(yamlBytes) + delimiter + note.Content, nil
}

// Parse reads a document produced by Stringify.
func Parse(doc string) (types.Note, error) {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	if !strings.HasPrefix(doc, delimiter) {
		return types.Note{}, ErrNoFrontmatter
	}

	rest := doc[len(delimiter):]
	var header, body string
	switch {
	case strings.HasPrefix(rest, delimiter):
		body = rest[len(delimiter):]
	default:
		endIndex := strings.Index(rest, "\n"+delimiter)
		if endIndex == -1 {
			if !strings.HasSuffix(rest, "\n---") {
				return types.Note{}, ErrNoFrontmatter
			}
			endIndex = len(rest) - len("\n---")
			header = rest[:endIndex]
		} else {
			header = rest[:endIndex]
			body = rest[endIndex+1+len(delimiter):]
		}
	}

	var note types.Note
	if err := yaml.Unmarshal([]byte(header), &note); err != nil {
		return types.Note{}, fmt.Errorf("invalid frontmatter: %w", err)
	}
	note.Content = body
	return note, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Filename returns a stable file name for note: a slug of the title plus
// the first characters of its identifier.
func Filename(note types.Note) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(note.Title), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		slug = "note"
	}
	id := note.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return slug + ".md"
	}
	return slug + "-" + id + ".md"
}

// WriteDir writes every note into dir, creating it if needed, and returns
// the written paths.
func WriteDir(dir string, notes []types.Note) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(notes))
	for _, note := range notes {
		doc, err := Stringify(note)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, Filename(note))
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write file: %s - %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadDir parses every .md file in dir, sorted by file name. Files without
// frontmatter are skipped.
func ReadDir(dir string) ([]types.Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var notes []types.Note
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return notes, fmt.Errorf("failed to read file: %s - %w", entry.Name(), err)
		}
		note, err := Parse(string(content))
		if errors.Is(err, ErrNoFrontmatter) {
			continue
		}
		if err != nil {
			return notes, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		notes = append(notes, note)
	}
	return notes, nil
}
