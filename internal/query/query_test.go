package query

import (
	"reflect"
	"testing"

	"github.com/taigrr/jotter/internal/types"
)

func testNotes() []types.Note {
	return []types.Note{
		{ID: "1", Title: "Shopping list", Content: "Milk, eggs", Tag: types.TagPersonal},
		{ID: "2", Title: "Meeting notes", Content: "Discuss roadmap", Tag: types.TagWork},
		{ID: "3", Title: "App idea", Content: "A MEETING scheduler", Tag: types.TagIdeas},
		{ID: "4", Title: "Dentist", Content: "Call on Monday", Tag: types.TagReminders},
		{ID: "5", Title: "Standup", Content: "daily sync", Tag: types.TagWork},
	}
}

func ids(notes []types.Note) []string {
	out := []string{}
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		filter string
		want   []string
	}{
		{name: "no filters keeps everything", term: "", filter: AllTags, want: []string{"1", "2", "3", "4", "5"}},
		{name: "whitespace term is empty", term: "   ", filter: AllTags, want: []string{"1", "2", "3", "4", "5"}},
		{name: "title match", term: "meeting", filter: AllTags, want: []string{"2", "3"}},
		{name: "case insensitive and trimmed", term: "  SHOPPING ", filter: AllTags, want: []string{"1"}},
		{name: "content match", term: "monday", filter: AllTags, want: []string{"4"}},
		{name: "tag only", term: "", filter: "personal", want: []string{"1"}},
		{name: "tag keeps order", term: "", filter: "work", want: []string{"2", "5"}},
		{name: "term and tag compose", term: "meeting", filter: "work", want: []string{"2"}},
		{name: "no matches", term: "zebra", filter: AllTags, want: []string{}},
		{name: "unknown tag filter", term: "", filter: "archive", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(testNotes(), tt.term, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q, %q) = %v, want %v", tt.term, tt.filter, got, tt.want)
			}
		})
	}
}

func TestFilter_TitleSearchAndTagFilter(t *testing.T) {
	notes := testNotes()[:2]

	got := Filter(notes, "meeting", AllTags)
	if len(got) != 1 || got[0].Title != "Meeting notes" {
		t.Errorf("Filter(meeting) = %v, want only Meeting notes", got)
	}

	got = Filter(notes, "", "personal")
	if len(got) != 1 || got[0].Title != "Shopping list" {
		t.Errorf("Filter(personal) = %v, want only Shopping list", got)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	notes := testNotes()
	before := testNotes()

	Filter(notes, "meeting", "work")

	if !reflect.DeepEqual(notes, before) {
		t.Error("Filter() modified its input")
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, "x", AllTags)
	if got == nil || len(got) != 0 {
		t.Errorf("Filter(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestCountTags(t *testing.T) {
	notes := append(testNotes(), types.Note{ID: "6", Tag: "misc"})

	got := CountTags(notes)
	want := []TagCount{
		{Tag: "work", Count: 2},
		{Tag: "personal", Count: 1},
		{Tag: "ideas", Count: 1},
		{Tag: "reminders", Count: 1},
		{Tag: "misc", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountTags() = %v, want %v", got, want)
	}
}

func TestValidFilter(t *testing.T) {
	for _, v := range []string{"all", "work", "personal", "ideas", "reminders"} {
		if !ValidFilter(v) {
			t.Errorf("ValidFilter(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "All", "misc"} {
		if ValidFilter(v) {
			t.Errorf("ValidFilter(%q) = true, want false", v)
		}
	}
}
