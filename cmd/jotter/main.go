// Package main implements the jotter command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/jotter/internal/config"
	"github.com/taigrr/jotter/internal/controller"
	"github.com/taigrr/jotter/internal/grammar"
	"github.com/taigrr/jotter/internal/render"
	"github.com/taigrr/jotter/internal/storage"
	"github.com/taigrr/jotter/internal/store"
	"github.com/taigrr/jotter/internal/theme"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

// app holds the services shared by every subcommand. It is populated in
// the root command's PersistentPreRunE.
type app struct {
	configPath string
	dataDir    string
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer

	area    *storage.Area
	store   *store.Store
	list    *render.List
	ctrl    *controller.Controller
	keys    *grammar.Keys
	prefs   *theme.Preference
	grammar *grammar.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jotter",
		Short: "Tagged notes in your terminal",
		Long: `jotter keeps short tagged notes (work, personal, ideas, reminders)
in a local data directory. Notes can be searched, filtered by tag,
deleted with confirmation and grammar-checked through Gemini.

Run "jotter tui" for the interactive view or "jotter serve" to expose
the notes to MCP clients over stdio.`,
		Example: `jotter add --title "Standup" --tag work --content "Sync at 10"
jotter list --search standup
jotter tui`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding notes and preferences")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newFixCmd(a),
		newKeyCmd(a),
		newThemeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newTUICmd(a),
		newServeCmd(a),
	)
	return root
}

// interactive reports whether cmd owns the terminal or stdout, in which
// case logs must not go to stderr/stdout.
func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || cmd.Name() == "serve"
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	if err := a.setupLogger(cmd); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a.area, err = storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	a.store = store.New(storage.NewNotes(a.area, a.logger), store.WithLogger(a.logger))
	a.store.Initialize()
	a.list = render.NewList(loc)
	a.ctrl = controller.New(a.store, a.list, controller.WithLogger(a.logger))
	a.keys = grammar.NewKeys(a.area, cfg.APIKey)
	a.prefs = theme.NewPreference(a.area)
	a.grammar = grammar.New(a.keys, grammar.Config{
		Endpoint: cfg.Gemini.Endpoint,
		Model:    cfg.Gemini.Model,
		Timeout:  cfg.Gemini.Timeout,
		Logger:   a.logger,
	})

	a.logger.Debug("jotter ready", "data_dir", cfg.DataDir, "notes", a.store.Len())
	return nil
}

func (a *app) setupLogger(cmd *cobra.Command) error {
	level := a.cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = cmd.ErrOrStderr()
	switch {
	case a.cfg.LogFile != "":
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	case interactive(cmd):
		w = io.Discard
	}

	a.logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
