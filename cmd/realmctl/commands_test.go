package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/realmctl/internal/render"
)

// fakeRealmEnv writes a stand-in realm program plus a settings file pointing
// at it, and returns the settings path and the directory the program records
// its argv and stdin into.
func fakeRealmEnv(t *testing.T, stdout, stderr string, code int, extraSettings string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	dir := t.TempDir()
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" >> '" + filepath.Join(dir, "args") + "'\n" +
		"cat > '" + filepath.Join(dir, "stdin") + "'\n" +
		"printf '%s' '" + stdout + "'\n" +
		"printf '%s' '" + stderr + "' >&2\n" +
		"exit " + strconv.Itoa(code) + "\n"
	bin := filepath.Join(dir, "realm")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	settingsPath := filepath.Join(dir, "settings.toml")
	contents := "binary_path = \"" + bin + "\"\nlog_format = \"json\"\n" + extraSettings
	require.NoError(t, os.WriteFile(settingsPath, []byte(contents), 0o600))

	return settingsPath, dir
}

func executeCommand(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	cmd.SetArgs(args)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func recordedArgs(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "args"))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestDiscoverCommand(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "example.com\n  type: kerberos\n", "", 0, "")

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "-o", "json",
		"discover", "--server-software", "active-directory")
	require.NoError(t, err)

	var res render.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.True(t, res.Success)
	require.True(t, res.Changed)
	require.Equal(t, 0, res.RC)
	require.Contains(t, res.Stdout, "type: kerberos")
	require.Equal(t, []string{"discover", "--unattended", "--server-software", "active-directory"}, recordedArgs(t, dir))
}

func TestJoinCommandPipesPasswordFromStdin(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "", 0, "")

	out, err := executeCommand(newRootCmd(), "s3cret\n", "--settings", settingsPath,
		"join", "example.com", "--user", "alice", "--computer-ou", "OU=Computers,DC=example,DC=com", "--password-stdin")
	require.NoError(t, err)
	require.Contains(t, out, "join example.com changed")

	args := recordedArgs(t, dir)
	require.Equal(t, []string{"join", "--unattended", "--computer-ou", "OU=Computers,DC=example,DC=com", "--user", "alice", "example.com"}, args)
	require.NotContains(t, args, "s3cret")

	stdin, err := os.ReadFile(filepath.Join(dir, "stdin"))
	require.NoError(t, err)
	require.Equal(t, "s3cret\n", string(stdin))
}

func TestLeaveCommandFailureIsReported(t *testing.T) {
	t.Parallel()

	settingsPath, _ := fakeRealmEnv(t, "", "realm: not joined to a domain", 1, "")

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "--output", "json", "leave")
	require.Error(t, err)

	var reported *reportedError
	require.ErrorAs(t, err, &reported)

	var res render.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.False(t, res.Success)
	require.Equal(t, 1, res.RC)
	require.Equal(t, "failed to run realm leave []: realm: not joined to a domain", res.Message)
}

func TestJoinCommandValidationFailureDoesNotRun(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "", 0, "")

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath,
		"join", "--no-password", "--one-time-password", "otp")
	require.Error(t, err)
	require.Contains(t, out, "mutually_exclusive")

	_, statErr := os.Stat(filepath.Join(dir, "args"))
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestDryRunMasksOneTimePassword(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "", 0, "")

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "--dry-run",
		"join", "example.com", "--one-time-password", "otp-123")
	require.NoError(t, err)
	require.Contains(t, out, "join --unattended --one-time-password ******** example.com")
	require.NotContains(t, out, "otp-123")

	_, statErr := os.Stat(filepath.Join(dir, "args"))
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestACLCommands(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "", 0, "")

	_, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "permit", "--groups", "-R", "example.com", "admins")
	require.NoError(t, err)
	require.Equal(t, []string{"permit", "--unattended", "--groups", "--realm", "example.com", "admins"}, recordedArgs(t, dir))

	_, err = executeCommand(newRootCmd(), "", "--settings", settingsPath, "deny")
	require.Error(t, err)

	_, err = executeCommand(newRootCmd(), "", "--settings", settingsPath, "deny", "--all", "--groups")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be combined")
}

func TestApplyCommandRunsDocumentAndJournals(t *testing.T) {
	t.Parallel()

	journalPath := filepath.Join(t.TempDir(), "journal.db")
	settingsPath, dir := fakeRealmEnv(t, "example.com", "", 0, "journal_path = \""+journalPath+"\"\n")

	docPath := filepath.Join(t.TempDir(), "realm.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte(`version: "1.0"
name: enrol
requests:
  - id: list
    action: list
    list_name: true
  - id: skipped
    enabled: false
    action: discover
  - id: leave
    action: leave
    realm: example.com
`), 0o600))

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "-o", "json", "apply", "-f", docPath)
	require.NoError(t, err)

	var results []render.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	require.Equal(t, "list", results[0].ID)
	require.Equal(t, "leave", results[1].ID)
	require.Equal(t, []string{"list", "--unattended", "--name-only", "leave", "--unattended", "example.com"}, recordedArgs(t, dir))

	history, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "-o", "json", "history")
	require.NoError(t, err)

	var entries []struct {
		Action        string `json:"action"`
		CorrelationID string `json:"correlation_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(history), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "leave", entries[0].Action)
	require.NotEmpty(t, entries[0].CorrelationID)
	require.Equal(t, entries[0].CorrelationID, entries[1].CorrelationID)
}

func TestApplyCommandStopsOnFirstFailure(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "boom", 3, "")

	docPath := filepath.Join(t.TempDir(), "realm.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte(`version: "1.0"
name: failing
requests:
  - id: first
    action: list
  - id: second
    action: discover
`), 0o600))

	out, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "apply", "-f", docPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "first")
	require.Contains(t, out, "✗ first (list)")
	require.NotContains(t, out, "second")
	require.Equal(t, []string{"list", "--unattended"}, recordedArgs(t, dir))
}

func TestHistoryRequiresJournal(t *testing.T) {
	t.Parallel()

	settingsPath, _ := fakeRealmEnv(t, "", "", 0, "")
	_, err := executeCommand(newRootCmd(), "", "--settings", settingsPath, "history")
	require.Error(t, err)
	require.Contains(t, err.Error(), "journal_path")
}

func TestValidateApplyOptions(t *testing.T) {
	t.Parallel()

	t.Run("returns error when document path is empty", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{DocumentPath: "   "})
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("returns error when document does not exist", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{DocumentPath: "/nonexistent/realm.yaml"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not exist")
	})

	t.Run("returns error when document path is a directory", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{DocumentPath: t.TempDir()})
		require.Error(t, err)
		require.Contains(t, err.Error(), "directory")
	})
}

func TestInvalidOutputFormat(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(newRootCmd(), "", "--output", "xml", "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "xml")
}

func TestLeaveCommandWithLDAPS(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "", "", 0, "")

	_, err := executeCommand(newRootCmd(), "", "--settings", settingsPath,
		"leave", "--use-ldaps", "--server-software", "active-directory", "--membership-software", "adcli", "example.com")
	require.NoError(t, err)
	require.Equal(t, []string{"leave", "--unattended", "--server-software", "active-directory", "--use-ldaps", "example.com"}, recordedArgs(t, dir))

	_, err = executeCommand(newRootCmd(), "", "--settings", settingsPath,
		"leave", "--use-ldaps", "--server-software", "active-directory", "example.com")
	require.Error(t, err)
}

func TestApplyCommandRendersResultsWhenInterrupted(t *testing.T) {
	t.Parallel()

	settingsPath, dir := fakeRealmEnv(t, "example.com", "", 0, "")
	// discover hangs until the run is cancelled.
	slow := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" >> '" + filepath.Join(dir, "args") + "'\n" +
		"if [ \"$1\" = discover ]; then exec sleep 10; fi\n" +
		"printf 'example.com'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "realm"), []byte(slow), 0o755))

	docPath := filepath.Join(t.TempDir(), "realm.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte(`version: "1.0"
name: interrupted
continue_on_error: true
requests:
  - id: first
    action: list
  - id: slow
    action: discover
  - id: never
    action: leave
`), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	root := newRootCmd()
	root.SetArgs([]string{"--settings", settingsPath, "apply", "-f", docPath})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "after 2 of 3 requests")
	require.Contains(t, out.String(), "✓ first (list) changed")
	require.Contains(t, out.String(), "✗ slow (discover)")
	require.NotContains(t, out.String(), "never")
	require.Equal(t, []string{"list", "--unattended", "discover", "--unattended"}, recordedArgs(t, dir))
}
