package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/taigrr/jotter/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit notes interactively",
		Long: `Open the interactive view.

  /        search            f   cycle tag filter
  n        new note          d   delete (y/n to confirm)
  enter    read more/less    t   toggle theme
  ctrl+g   fix grammar (in the form)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model := tui.New(a.ctrl, a.list, a.prefs,
				tui.WithCorrector(a.grammar),
				tui.WithLogger(a.logger),
				tui.WithContext(cmd.Context()),
			)
			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running tui: %w", err)
			}
			return nil
		},
	}
}
