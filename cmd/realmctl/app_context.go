package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/realmctl/internal/journal"
	"github.com/alexisbeaulieu97/realmctl/internal/logger"
	"github.com/alexisbeaulieu97/realmctl/internal/realm"
	"github.com/alexisbeaulieu97/realmctl/internal/render"
	"github.com/alexisbeaulieu97/realmctl/internal/settings"
)

const defaultSettingsHint = settings.DefaultPath

// appContext bundles the services one command invocation needs.
type appContext struct {
	Settings settings.Settings
	Logger   *logger.Logger
	Journal  *journal.Journal
	Runner   *realm.Runner
	Format   render.Format
	DryRun   bool
}

// reportedError marks failures whose details were already written to the
// command output, so main only sets the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func newAppContext(cmd *cobra.Command, root *rootFlags) (*appContext, context.Context, error) {
	format, err := render.ParseFormat(root.output)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := settings.Load(root.settingsPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if root.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: cfg.HumanLogs(), Writer: cmd.ErrOrStderr()})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	app := &appContext{Settings: cfg, Logger: log, Format: format, DryRun: root.dryRun}

	opts := realm.Options{
		BinaryPath: cfg.BinaryPath,
		ProbeState: cfg.ProbeState,
		Timeout:    cfg.TimeoutDuration(),
		Logger:     log,
	}
	if cfg.JournalPath != "" && !root.dryRun {
		j, err := journal.New(cfg.JournalPath)
		if err != nil {
			return nil, nil, err
		}
		app.Journal = j
		opts.Recorder = j
	}
	app.Runner = realm.NewRunner(opts)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithCorrelationID(ctx, logger.NewCorrelationID())

	return app, ctx, nil
}

// Close releases the journal if one was opened.
func (a *appContext) Close() {
	if a == nil || a.Journal == nil {
		return
	}
	if err := a.Journal.Close(); err != nil {
		a.Logger.Error(err, "failed to close journal")
	}
}
