package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	settingsPath string
	verbose      bool
	dryRun       bool
	output       string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "realmctl",
		Short:         "realmctl drives realmd to discover, join and leave identity realms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.settingsPath, "settings", "", "Path to settings file (default "+defaultSettingsHint+")")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Print the realm command instead of running it")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "human", "Output format: human or json")

	cmd.AddCommand(newDiscoverCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newJoinCmd(flags))
	cmd.AddCommand(newLeaveCmd(flags))
	cmd.AddCommand(newACLCmd(flags, "permit"))
	cmd.AddCommand(newACLCmd(flags, "deny"))
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
