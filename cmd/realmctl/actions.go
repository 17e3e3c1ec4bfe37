package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/realmctl/internal/realm"
)

func bindSoftware(cmd *cobra.Command, req *realm.Request) {
	cmd.Flags().StringVar(&req.ClientSoftware, "client-software", "", "Client software: sssd or winbind")
	cmd.Flags().StringVar(&req.MembershipSoftware, "membership-software", "", "Membership software: adcli or samba")
	cmd.Flags().StringVar(&req.ServerSoftware, "server-software", "", "Server software: active-directory or ipa")
	cmd.Flags().BoolVar(&req.UseLDAPS, "use-ldaps", false, "Use LDAPS when talking to the domain")
}

func realmArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newDiscoverCmd(root *rootFlags) *cobra.Command {
	req := realm.Request{Action: realm.ActionDiscover}

	cmd := &cobra.Command{
		Use:   "discover [realm]",
		Short: "Discover a realm and its configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Realm = realmArg(args)
			return runRequest(cmd, root, req)
		},
	}

	cmd.Flags().BoolVar(&req.DiscoverAll, "all", false, "Show all discovered realms")
	cmd.Flags().BoolVar(&req.DiscoverName, "name", false, "Print only realm names")
	bindSoftware(cmd, &req)

	return cmd
}

func newListCmd(root *rootFlags) *cobra.Command {
	req := realm.Request{Action: realm.ActionList}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured realms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, root, req)
		},
	}

	cmd.Flags().BoolVar(&req.ListAll, "all", false, "Include discovered but unconfigured realms")
	cmd.Flags().BoolVar(&req.ListName, "name-only", false, "Print only realm names")

	return cmd
}

func newJoinCmd(root *rootFlags) *cobra.Command {
	req := realm.Request{Action: realm.ActionJoin}
	password := &passwordFlags{}

	cmd := &cobra.Command{
		Use:   "join [realm]",
		Short: "Enrol this machine in a realm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := password.resolve(cmd)
			if err != nil {
				return err
			}
			req.Realm = realmArg(args)
			req.Password = secret
			return runRequest(cmd, root, req)
		},
	}

	bindSoftware(cmd, &req)
	cmd.Flags().StringVar(&req.ComputerName, "computer-name", "", "NetBIOS computer name to register")
	cmd.Flags().StringVar(&req.ComputerOU, "computer-ou", "", "Distinguished name of the OU for the computer account")
	cmd.Flags().BoolVar(&req.NoPassword, "no-password", false, "Join without a password")
	cmd.Flags().StringVar(&req.OneTimePassword, "one-time-password", "", "One-time password for the computer account")
	cmd.Flags().StringVar(&req.OSName, "os-name", "", "Operating system name to record")
	cmd.Flags().StringVar(&req.OSVersion, "os-version", "", "Operating system version to record")
	cmd.Flags().StringVarP(&req.User, "user", "U", "", "Administrative user for the join")
	password.bind(cmd)

	return cmd
}

func newLeaveCmd(root *rootFlags) *cobra.Command {
	req := realm.Request{Action: realm.ActionLeave}
	password := &passwordFlags{}

	cmd := &cobra.Command{
		Use:   "leave [realm]",
		Short: "Remove this machine from a realm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := password.resolve(cmd)
			if err != nil {
				return err
			}
			req.Realm = realmArg(args)
			req.Password = secret
			return runRequest(cmd, root, req)
		},
	}

	// realm leave has no --membership-software option; the value only satisfies
	// the use_ldaps requirement.
	bindSoftware(cmd, &req)
	cmd.Flags().BoolVar(&req.Remove, "remove", false, "Delete the computer account from the domain")
	cmd.Flags().StringVarP(&req.User, "user", "U", "", "Administrative user for the leave")
	password.bind(cmd)

	return cmd
}

func newACLCmd(root *rootFlags, verb string) *cobra.Command {
	req := realm.Request{Action: realm.Action(verb)}
	var all, groups bool

	short := "Permit realm logins"
	if verb == string(realm.ActionDeny) {
		short = "Deny realm logins"
	}

	cmd := &cobra.Command{
		Use:   verb + " [names...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && groups:
				return errors.New("--all and --groups cannot be combined")
			case all:
				req.Scope = realm.ScopeAll
			case groups:
				req.Scope = realm.ScopeGroups
			default:
				req.Scope = realm.ScopeUsers
			}
			req.Names = args
			return runRequest(cmd, root, req)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Apply to every realm account")
	cmd.Flags().BoolVarP(&groups, "groups", "g", false, "Treat names as groups")
	cmd.Flags().StringVarP(&req.Realm, "realm", "R", "", "Realm to change")

	return cmd
}
