package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/jotter/internal/types"
)

const testKey = "AIzaSyD-test_key_0123456789"

type env struct {
	dataDir string
	config  string
}

// newEnv points config and data at temp dirs. endpoint may be empty.
func newEnv(t *testing.T, endpoint string) env {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JOTTER_DATA_DIR", "")

	dir := t.TempDir()
	cfg := "log_level: error\ntimezone: UTC\n"
	if endpoint != "" {
		cfg += fmt.Sprintf("gemini:\n  endpoint: %s\n", endpoint)
	}
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return env{dataDir: filepath.Join(dir, "data"), config: path}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.config, "--data-dir", e.dataDir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func (e env) notes(t *testing.T) []types.Note {
	t.Helper()
	var notes []types.Note
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "list", "--json")), &notes))
	return notes
}

func geminiServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAddAndList(t *testing.T) {
	e := newEnv(t, "")

	out := e.mustRun(t, "add", "--title", "Standup", "--tag", "work", "--content", "Sync at 10")
	assert.Contains(t, out, "Created")
	e.mustRun(t, "add", "-t", "Groceries", "-g", "Personal", "-c", strings.Repeat("milk ", 40))

	notes := e.notes(t)
	require.Len(t, notes, 2)
	assert.Equal(t, "Groceries", notes[0].Title)
	assert.Equal(t, types.TagPersonal, notes[0].Tag)
	assert.Equal(t, "Standup", notes[1].Title)
	assert.NotEqual(t, notes[0].ID, notes[1].ID)

	out = e.mustRun(t, "list")
	assert.Contains(t, out, "Read more")
	assert.Contains(t, out, "💼 Work")
	assert.NotContains(t, out, strings.Repeat("milk ", 40))

	out = e.mustRun(t, "list", "--expand")
	assert.Contains(t, out, "Show less")

	out = e.mustRun(t, "list", "--search", "SYNC")
	assert.Contains(t, out, "Standup")
	assert.NotContains(t, out, "Groceries")

	out = e.mustRun(t, "list", "--tag", "ideas")
	assert.Contains(t, out, "No notes found")

	_, err := e.run(t, "", "list", "--tag", "bogus")
	assert.Error(t, err)
}

func TestAddValidation(t *testing.T) {
	e := newEnv(t, "")

	_, err := e.run(t, "", "add", "--tag", "work")
	assert.ErrorContains(t, err, "title is required")

	_, err = e.run(t, "", "add", "--title", "x", "--tag", "urgent")
	assert.ErrorContains(t, err, "tag must be one of")

	assert.Empty(t, e.notes(t))
}

func TestAddContentFromStdin(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.run(t, "line one\nline two\n", "add", "--title", "Piped", "--tag", "ideas", "--content-file", "-")
	require.NoError(t, err)

	notes := e.notes(t)
	require.Len(t, notes, 1)
	assert.Equal(t, "line one\nline two", notes[0].Content)
}

func TestDelete(t *testing.T) {
	e := newEnv(t, "")
	e.mustRun(t, "add", "--title", "Keep", "--tag", "work")
	e.mustRun(t, "add", "--title", "Drop", "--tag", "ideas")
	drop := e.notes(t)[0]

	t.Run("declined", func(t *testing.T) {
		out, err := e.run(t, "n\n", "delete", drop.ID[:8])
		require.NoError(t, err)
		assert.Contains(t, out, "Cancelled")
		assert.Len(t, e.notes(t), 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := e.run(t, "", "delete", "--yes", "zzzz")
		assert.ErrorContains(t, err, "no note")
	})

	t.Run("confirmed", func(t *testing.T) {
		out, err := e.run(t, "y\n", "delete", drop.ID[:8])
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted")
		notes := e.notes(t)
		require.Len(t, notes, 1)
		assert.Equal(t, "Keep", notes[0].Title)
	})

	t.Run("yes flag", func(t *testing.T) {
		keep := e.notes(t)[0]
		e.mustRun(t, "delete", "-y", keep.ID)
		assert.Empty(t, e.notes(t))
	})
}

func TestLegacyNotesKeepIdentifiers(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, os.MkdirAll(e.dataDir, 0o755))
	blob := `[{"title":"Old","content":"c","tag":"work","date":"2024-05-01T10:00:00.000Z"},` +
		`{"title":"Older","content":"d","tag":"ideas","date":"2024-04-01"}]`
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, "notes"), []byte(blob), 0o644))

	first := e.notes(t)
	require.Len(t, first, 2)
	require.NotEmpty(t, first[0].ID)
	assert.Equal(t, first, e.notes(t))

	e.mustRun(t, "delete", "--yes", first[0].ID)
	rest := e.notes(t)
	require.Len(t, rest, 1)
	assert.Equal(t, first[1].ID, rest[0].ID)
	assert.Equal(t, "Older", rest[0].Title)
}

func TestResolveNote(t *testing.T) {
	notes := []types.Note{{ID: "abc123"}, {ID: "abd456"}, {ID: "ab"}}

	n, err := resolveNote(notes, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", n.ID)

	n, err = resolveNote(notes, "ab")
	require.NoError(t, err, "exact match wins over prefix matches")
	assert.Equal(t, "ab", n.ID)

	_, err = resolveNote(notes[:2], "ab")
	assert.ErrorContains(t, err, "matches 2 notes")

	_, err = resolveNote(notes, " ")
	assert.Error(t, err)
}

func TestKeyCommands(t *testing.T) {
	e := newEnv(t, "")

	_, err := e.run(t, "", "key", "show")
	assert.Error(t, err)

	_, err = e.run(t, "", "key", "set", "not-a-key")
	assert.Error(t, err)

	e.mustRun(t, "key", "set", testKey)
	out := e.mustRun(t, "key", "show")
	assert.Contains(t, out, "AIza")
	assert.NotContains(t, out, testKey)

	e.mustRun(t, "key", "clear")
	_, err = e.run(t, "", "key", "show")
	assert.Error(t, err)
}

func TestFixCommand(t *testing.T) {
	srv := geminiServer(t, `"I am here."`)
	e := newEnv(t, srv.URL)

	_, err := e.run(t, "", "fix", "i", "is", "here")
	assert.Error(t, err, "no key configured")

	e.mustRun(t, "key", "set", testKey)
	out := e.mustRun(t, "fix", "i", "is", "here")
	assert.Equal(t, "I am here.\n", out)

	e.mustRun(t, "add", "--title", "Fixed", "--tag", "ideas", "--content", "i is here", "--fix")
	assert.Equal(t, "I am here.", e.notes(t)[0].Content)
}

func TestAddFixFailureKeepsDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	e := newEnv(t, srv.URL)
	e.mustRun(t, "key", "set", testKey)

	out, err := e.run(t, "", "add", "--title", "Draft", "--tag", "ideas", "--content", "i is here", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "grammar fix failed")
	assert.Equal(t, "i is here", e.notes(t)[0].Content)
}

func TestThemeCommand(t *testing.T) {
	e := newEnv(t, "")

	assert.Contains(t, e.mustRun(t, "theme"), "light")
	assert.Contains(t, e.mustRun(t, "theme", "toggle"), "dark")
	assert.Contains(t, e.mustRun(t, "theme"), "dark")
	assert.Contains(t, e.mustRun(t, "theme", "light"), "light")

	_, err := e.run(t, "", "theme", "sepia")
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := newEnv(t, "")
	src.mustRun(t, "add", "--title", "First", "--tag", "work", "--content", "one")
	src.mustRun(t, "add", "--title", "Second", "--tag", "ideas", "--content", "two")
	want := src.notes(t)

	dir := filepath.Join(t.TempDir(), "md")
	out := src.mustRun(t, "export", dir)
	assert.Contains(t, out, "Exported 2 notes")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	dst := newEnv(t, "")
	out = dst.mustRun(t, "import", dir)
	assert.Contains(t, out, "Imported 2 notes")

	got := dst.notes(t)
	require.Len(t, got, 2)
	ids := map[string]bool{got[0].ID: true, got[1].ID: true}
	assert.True(t, ids[want[0].ID] && ids[want[1].ID])

	out = dst.mustRun(t, "import", dir)
	assert.Contains(t, out, "Imported 0 notes (2 already present)")
}
