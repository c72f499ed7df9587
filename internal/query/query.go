// Package query derives filtered views of a note collection.
package query

import (
	"strings"

	"github.com/taigrr/jotter/internal/types"
)

// AllTags is the tag filter value that disables tag filtering.
const AllTags = "all"

// Filter returns the notes whose title or content contains searchTerm
// (case-insensitive, trimmed) and whose tag equals tagFilter, unless
// tagFilter is AllTags. Input order is preserved and notes is not modified.
func Filter(notes []types.Note, searchTerm, tagFilter string) []types.Note {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	filtered := make([]types.Note, 0, len(notes))
	for _, note := range notes {
		if term != "" && !matchesTerm(note, term) {
			continue
		}
		if tagFilter != AllTags && string(note.Tag) != tagFilter {
			continue
		}
		filtered = append(filtered, note)
	}
	return filtered
}

// matchesTerm expects term to be lowercased already.
func matchesTerm(note types.Note, term string) bool {
	return strings.Contains(strings.ToLower(note.Title), term) ||
		strings.Contains(strings.ToLower(note.Content), term)
}

// TagCount is the number of notes carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountTags counts notes per tag. Known tags come first in display order,
// then any other tag values in order of first appearance.
func CountTags(notes []types.Note) []TagCount {
	counts := make(map[types.Tag]int)
	var extra []types.Tag
	for _, note := range notes {
		if _, seen := counts[note.Tag]; !seen && !note.Tag.Valid() {
			extra = append(extra, note.Tag)
		}
		counts[note.Tag]++
	}

	result := make([]TagCount, 0, len(counts))
	for _, tag := range append(types.Tags(), extra...) {
		result = append(result, TagCount{Tag: string(tag), Count: counts[tag]})
	}
	return result
}

// ValidFilter reports whether v is AllTags or a known tag.
func ValidFilter(v string) bool {
	return v == AllTags || types.Tag(v).Valid()
}
