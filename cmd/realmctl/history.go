package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/realmctl/internal/render"
)

func newHistoryCmd(root *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent realm invocations from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Journal == nil {
				return errors.New("journal_path is not configured in settings")
			}

			entries, err := app.Journal.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return render.History(cmd.OutOrStdout(), app.Format, entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show (0 for all)")

	return cmd
}
