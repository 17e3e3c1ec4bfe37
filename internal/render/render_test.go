package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/realmctl/internal/journal"
	"github.com/alexisbeaulieu97/realmctl/internal/realm"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatHuman, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestResultsJSONSingleSuccess(t *testing.T) {
	t.Parallel()

	res := FromOutcome("", realm.ActionList, &realm.Outcome{
		Action: realm.ActionList, Flags: []string{"--name-only"}, Success: true, Changed: true, Stdout: "example.com\n",
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatJSON, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, true, decoded["success"])
	require.Equal(t, true, decoded["changed"])
	require.Equal(t, float64(0), decoded["rc"])
	require.Equal(t, "example.com\n", decoded["stdout"])
	require.NotContains(t, decoded, "message")
}

func TestResultsJSONFailureCarriesMessage(t *testing.T) {
	t.Parallel()

	res := FromOutcome("", realm.ActionLeave, &realm.Outcome{
		Action: realm.ActionLeave, RC: 2, Stderr: "not joined", Message: "failed to run realm leave []: not joined",
	}, errors.New("ignored"))

	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatJSON, res))

	var decoded Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.False(t, decoded.Success)
	require.Equal(t, 2, decoded.RC)
	require.Equal(t, "failed to run realm leave []: not joined", decoded.Message)
}

func TestResultsJSONArrayForManyAndRejected(t *testing.T) {
	t.Parallel()

	results := []Result{
		FromOutcome("discover", realm.ActionDiscover, &realm.Outcome{Action: realm.ActionDiscover, Success: true, Changed: true}, nil),
		FromOutcome("join", realm.ActionJoin, nil, errors.New("validation error [mutually_exclusive]: no_password, password")),
	}

	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatJSON, results...))

	var decoded []Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "join", decoded[1].ID)
	require.Equal(t, -1, decoded[1].RC)
	require.Contains(t, decoded[1].Message, "mutually_exclusive")
}

func TestResultsHuman(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Action: "join", Realm: "example.com", Success: true, Changed: true},
		{Action: "leave", Realm: "example.com", Success: true, Skipped: true},
		{ID: "bad", Action: "leave", RC: 2, Message: "failed to run realm leave []: not joined"},
		{Action: "list", Success: true, Changed: true, Stdout: "example.com\nother.org\n"},
	}

	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatHuman, results...))
	out := buf.String()

	require.Contains(t, out, "✓ join example.com changed")
	require.Contains(t, out, "○ leave example.com unchanged")
	require.Contains(t, out, "✗ bad (leave)")
	require.Contains(t, out, "rc=2")
	require.Contains(t, out, "  failed to run realm leave []: not joined")
	require.Contains(t, out, "  other.org")
	require.Contains(t, out, "Requests: 3/4 succeeded")
}

func TestHistory(t *testing.T) {
	t.Parallel()

	entries := []journal.Entry{
		{ID: "b", Action: "leave", RC: 2, Message: "failed", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "a", Action: "join", Realm: "example.com", Flags: "--user alice", Success: true, Changed: true, CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, History(&buf, FormatHuman, entries))
	out := buf.String()
	require.Contains(t, out, "Recent realm invocations")
	require.Contains(t, out, "2026-03-01 09:00:00 join")
	require.Contains(t, out, "[--user alice]")
	require.Contains(t, out, "  failed")

	buf.Reset()
	require.NoError(t, History(&buf, FormatHuman, nil))
	require.Contains(t, buf.String(), "No invocations recorded")

	buf.Reset()
	require.NoError(t, History(&buf, FormatJSON, nil))
	require.Equal(t, "[]\n", buf.String())
}
