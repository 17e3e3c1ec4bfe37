package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/realmctl/internal/realm"
	"github.com/alexisbeaulieu97/realmctl/internal/render"
)

// runRequest executes one request built from command line flags and renders
// its result.
func runRequest(cmd *cobra.Command, root *rootFlags, req realm.Request) error {
	app, ctx, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.DryRun {
		return printPlan(cmd, app, req)
	}

	out, runErr := app.Runner.Run(ctx, req)
	res := render.FromOutcome("", req.Action, out, runErr)
	if err := render.Results(cmd.OutOrStdout(), app.Format, res); err != nil {
		return err
	}
	if runErr != nil {
		return &reportedError{err: runErr}
	}
	return nil
}

func printPlan(cmd *cobra.Command, app *appContext, req realm.Request) error {
	argv, err := app.Runner.Plan(req)
	if err != nil {
		return err
	}
	if app.Format == render.FormatJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Argv []string `json:"argv"`
		}{Argv: argv})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(argv, " "))
	return err
}
