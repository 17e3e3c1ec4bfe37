package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/realmctl/internal/config"
	"github.com/alexisbeaulieu97/realmctl/internal/render"
)

type applyOptions struct {
	DocumentPath string
}

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run every request in a realm document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateApplyOptions(opts); err != nil {
				return err
			}
			return runApply(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.DocumentPath, "file", "f", "", "Path to request document")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func validateApplyOptions(opts applyOptions) error {
	if strings.TrimSpace(opts.DocumentPath) == "" {
		return fmt.Errorf("request document is required")
	}

	abs, err := filepath.Abs(opts.DocumentPath)
	if err != nil {
		return fmt.Errorf("resolve document path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("request document does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("document path %s is a directory", abs)
	}

	return nil
}

// runApply runs the document's enabled requests in order. A failure stops the
// run unless continue_on_error is set. Cancellation stops it after rendering
// whatever already ran.
func runApply(cmd *cobra.Command, root *rootFlags, opts applyOptions) error {
	doc, err := config.ParseDocument(opts.DocumentPath)
	if err != nil {
		return err
	}

	app, ctx, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	log := app.Logger.WithContext(ctx).WithFields(map[string]any{"document": doc.Name})

	var (
		results     []render.Result
		failed      []string
		interrupted error
	)
	for _, entry := range doc.EnabledEntries() {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}

		req, err := entry.Resolve(nil)
		if err != nil {
			results = append(results, render.FromOutcome(entry.ID, entry.Request.Action, nil, err))
			failed = append(failed, entry.ID)
			if !doc.ContinueOnError {
				break
			}
			continue
		}

		if app.DryRun {
			argv, err := app.Runner.Plan(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", entry.ID, strings.Join(argv, " "))
			continue
		}

		log.WithFields(map[string]any{"request": entry.ID}).Debug("running request")
		out, runErr := app.Runner.Run(ctx, req)
		results = append(results, render.FromOutcome(entry.ID, req.Action, out, runErr))
		if runErr != nil {
			failed = append(failed, entry.ID)
			if err := ctx.Err(); err != nil {
				interrupted = err
				break
			}
			if !doc.ContinueOnError {
				break
			}
		}
	}

	if app.DryRun {
		return nil
	}

	if err := render.Results(cmd.OutOrStdout(), app.Format, results...); err != nil {
		return err
	}
	if interrupted != nil {
		return fmt.Errorf("apply interrupted after %d of %d requests: %w",
			len(results), len(doc.EnabledEntries()), interrupted)
	}
	if len(failed) > 0 {
		return &reportedError{err: errors.New("requests failed: " + strings.Join(failed, ", "))}
	}
	return nil
}
