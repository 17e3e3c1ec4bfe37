package realm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFlagsDiscover(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"--server-software", "active-directory"},
		BuildFlags(Discover{ServerSoftware: "active-directory"}))

	require.Equal(t, []string{
		"--all",
		"--client-software", "sssd",
		"--name",
		"--membership-software", "adcli",
		"--server-software", "active-directory",
		"--use-ldaps",
	}, BuildFlags(Discover{
		All:                true,
		ClientSoftware:     "sssd",
		NameOnly:           true,
		MembershipSoftware: "adcli",
		ServerSoftware:     "active-directory",
		UseLDAPS:           true,
		Realm:              "example.com",
	}))
}

func TestBuildFlagsList(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"--all", "--name-only"}, BuildFlags(List{All: true, NameOnly: true}))
	require.Equal(t, []string{"--name-only"}, BuildFlags(List{NameOnly: true}))
	require.Empty(t, BuildFlags(List{}))
}

func TestBuildFlagsJoinFullOrder(t *testing.T) {
	t.Parallel()

	op := Join{
		ClientSoftware:     "winbind",
		ComputerName:       "WS01",
		ComputerOU:         "OU=Computers,DC=example,DC=com",
		MembershipSoftware: "samba",
		OneTimePassword:    "otp-123",
		OSName:             "Rocky Linux",
		OSVersion:          "9.4",
		ServerSoftware:     "active-directory",
		UseLDAPS:           true,
		User:               "alice",
		Password:           "never-on-argv",
	}

	require.Equal(t, []string{
		"--client-software", "winbind",
		"--computer-name", "WS01",
		"--computer-ou", "OU=Computers,DC=example,DC=com",
		"--membership-software", "samba",
		"--one-time-password", "otp-123",
		"--os-name", "Rocky Linux",
		"--os-version", "9.4",
		"--server-software", "active-directory",
		"--use-ldaps",
		"--user", "alice",
	}, BuildFlags(op))
	require.NotContains(t, BuildFlags(op), "never-on-argv")
}

func TestBuildFlagsJoinIsPure(t *testing.T) {
	t.Parallel()

	op := Join{User: "alice", ComputerOU: "OU=Computers,DC=example,DC=com", NoPassword: true}
	first := BuildFlags(op)
	second := BuildFlags(op)
	require.Equal(t, first, second)
	require.Equal(t, []string{"--computer-ou", "OU=Computers,DC=example,DC=com", "--no-password", "--user", "alice"}, first)
}

func TestBuildFlagsLeave(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"--client-software", "sssd",
		"--remove",
		"--server-software", "ipa",
		"--use-ldaps",
		"--user", "admin",
	}, BuildFlags(Leave{ClientSoftware: "sssd", Remove: true, ServerSoftware: "ipa", UseLDAPS: true, User: "admin", Password: "pw"}))
}

func TestBuildFlagsACL(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"--all"}, BuildFlags(Permit{Scope: ScopeAll}))
	require.Equal(t, []string{"--groups", "--realm", "example.com"}, BuildFlags(Permit{Scope: ScopeGroups, Names: []string{"admins"}, Realm: "example.com"}))
	require.Empty(t, BuildFlags(Deny{Scope: ScopeUsers, Names: []string{"bob"}}))
	require.Equal(t, []string{"bob"}, positionals(Deny{Scope: ScopeUsers, Names: []string{"bob"}}))
}

func TestBuildFlagsAbsentFieldsProduceNothing(t *testing.T) {
	t.Parallel()

	require.Empty(t, BuildFlags(Discover{}))
	require.Empty(t, BuildFlags(Join{}))
	require.Empty(t, BuildFlags(Leave{}))

	// Whitespace-only free text counts as unset.
	require.Empty(t, BuildFlags(Join{ComputerOU: "   ", OSName: "\t"}))

	tokens := BuildFlags(Join{User: "alice"})
	for _, absent := range []string{"--no-password", "--use-ldaps", "--computer-name", "--one-time-password", "--client-software"} {
		require.NotContains(t, tokens, absent)
	}
}

func TestDisplayFlagsMasksOneTimePassword(t *testing.T) {
	t.Parallel()

	op := Join{OneTimePassword: "otp-123", User: "alice"}
	require.Equal(t, []string{"--one-time-password", redacted, "--user", "alice"}, DisplayFlags(op))
	require.Contains(t, BuildFlags(op), "otp-123")
}

func TestRequestOperationCarriesOnlyRelevantFields(t *testing.T) {
	t.Parallel()

	op, err := Request{Action: ActionList, ListAll: true, Realm: "ignored.example.com", User: "alice"}.Operation()
	require.NoError(t, err)
	require.Equal(t, List{All: true}, op)

	op, err = Request{Action: ActionLeave, Remove: true, User: "admin", Password: "pw", Realm: "example.com"}.Operation()
	require.NoError(t, err)
	require.Equal(t, Leave{Remove: true, User: "admin", Password: "pw", Realm: "example.com"}, op)

	_, err = Request{Action: "rejoin"}.Operation()
	require.Error(t, err)
}
