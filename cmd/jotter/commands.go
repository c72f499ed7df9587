package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/taigrr/jotter/internal/frontmatter"
	"github.com/taigrr/jotter/internal/grammar"
	"github.com/taigrr/jotter/internal/query"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/theme"
	"github.com/taigrr/jotter/internal/types"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		form        types.NoteForm
		tag         string
		contentFile string
		fix         bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Long: `Create a note with a title, optional content and one of the tags
work, personal, ideas or reminders. The new note is placed first.`,
		Example: `jotter add --title "Buy milk" --tag reminders
echo "draft text" | jotter add --title Draft --tag ideas --content-file - --fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Tag = types.Tag(strings.ToLower(strings.TrimSpace(tag)))
			form.Title = strings.TrimSpace(form.Title)

			if contentFile != "" {
				content, err := readContent(cmd, contentFile)
				if err != nil {
					return err
				}
				form.Content = content
			}

			if fix && strings.TrimSpace(form.Content) != "" {
				fixed, err := grammar.FixDraft(cmd.Context(), a.grammar, form.Content)
				if err != nil {
					a.logger.Warn("grammar fix failed, keeping draft", "error", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "grammar fix failed: %v\n", err)
				}
				form.Content = fixed
			}

			note, err := a.ctrl.SubmitNote(form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", render.ShortID(note.ID), note.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Title, "title", "t", "", "note title (required)")
	cmd.Flags().StringVarP(&form.Content, "content", "c", "", "note content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read content from a file, or - for stdin")
	cmd.Flags().StringVarP(&tag, "tag", "g", "", "tag: work, personal, ideas or reminders")
	cmd.Flags().BoolVar(&fix, "fix", false, "correct the content's grammar before saving")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")
	return cmd
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func newListCmd(a *app) *cobra.Command {
	var (
		search string
		tag    string
		expand bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Long: `List notes matching an optional search term and tag filter. The search
is a case-insensitive substring match on title and content. Long content
is cut at 150 characters unless --expand is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !query.ValidFilter(tag) {
				return fmt.Errorf("unknown tag %q: want all, work, personal, ideas or reminders", tag)
			}
			a.ctrl.SetSearch(search)
			notes := a.ctrl.SetFilter(tag)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(notes)
			}

			if expand {
				a.list.ExpandAll()
			}
			styles := theme.Styles(a.prefs.Load())
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderList(a.list, -1, 0))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "search term")
	cmd.Flags().StringVarP(&tag, "tag", "g", query.AllTags, "tag filter")
	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "show full content")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print notes as JSON")
	return cmd
}

// resolveNote finds the note whose id starts with prefix.
func resolveNote(notes []types.Note, prefix string) (types.Note, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return types.Note{}, errors.New("note id cannot be empty")
	}
	var matches []types.Note
	for _, n := range notes {
		if n.ID == prefix {
			return n, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return types.Note{}, fmt.Errorf("no note with id %q", prefix)
	case 1:
		return matches[0], nil
	}
	return types.Note{}, fmt.Errorf("id %q matches %d notes; use a longer prefix", prefix, len(matches))
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note after confirmation",
		Long: `Delete the note whose id starts with the given prefix. You are asked
to confirm unless --yes is given. Deletion cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := resolveNote(a.store.Notes(), args[0])
			if err != nil {
				return err
			}
			a.ctrl.RequestDelete(note.ID)

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %q (%s)? [y/N] ", note.Title, render.ShortID(note.ID))
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if !slices.Contains([]string{"y", "yes"}, strings.ToLower(strings.TrimSpace(answer))) {
					a.ctrl.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			removed, err := a.ctrl.ConfirmDelete()
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", render.ShortID(note.ID), note.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newFixCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fix [text...]",
		Short: "Correct grammar, punctuation and spelling",
		Long: `Send text to Gemini and print the corrected version. Text is read from
the arguments, or from stdin when none are given. Requires an API key
(see "jotter key set" or GEMINI_API_KEY).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}
			fixed, err := a.grammar.Fix(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fixed)
			return nil
		},
	}
}

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key>",
			Short: "Validate and store the API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.keys.Save(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the API key in masked form",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := a.keys.Load()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), grammar.Mask(key))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.keys.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
				return nil
			},
		},
	)
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle|light|dark]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"toggle", string(theme.Light), string(theme.Dark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := a.prefs.Load()
			if len(args) == 1 {
				var err error
				if args[0] == "toggle" {
					mode, err = a.prefs.Toggle()
				} else if mode, err = theme.ParseMode(args[0]); err == nil {
					err = a.prefs.Set(mode)
				}
				if err != nil {
					return err
				}
			}
			p := theme.Palette(mode)
			swatch := lipgloss.NewStyle().Foreground(p.Text).Background(p.Accent).Padding(0, 1).Render(string(mode))
			fmt.Fprintln(cmd.OutOrStdout(), swatch)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every note as a Markdown file with YAML frontmatter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := frontmatter.WriteDir(args[0], a.store.Notes())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", len(paths), args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Read notes exported by jotter export",
		Long: `Read every Markdown file with frontmatter in a directory and add the
notes that are not already present. Files are added in name order, so the
first file ends up first in the list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := frontmatter.ReadDir(args[0])
			if err != nil {
				return err
			}
			added := 0
			for _, note := range slices.Backward(notes) {
				if note.ID != "" {
					if _, exists := a.store.Get(note.ID); exists {
						continue
					}
				}
				if err := a.store.Insert(note); err != nil {
					return fmt.Errorf("failed to import %q: %w", note.Title, err)
				}
				added++
			}
			a.logger.Info("import finished", "dir", args[0], "added", added, "skipped", len(notes)-added)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes (%d already present)\n", added, len(notes)-added)
			return nil
		},
	}
}
