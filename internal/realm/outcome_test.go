package realm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpretSuccess(t *testing.T) {
	t.Parallel()

	inv := NewInvocation("realm", List{NameOnly: true})
	out := Interpret(inv, &ExecutionResult{Stdout: "example.com\n"})
	require.True(t, out.Success)
	require.True(t, out.Changed)
	require.Empty(t, out.Message)
	require.Equal(t, "example.com\n", out.Stdout)
}

func TestInterpretFailureKeepsStderrText(t *testing.T) {
	t.Parallel()

	inv := NewInvocation("realm", Join{OneTimePassword: "otp-123", Realm: "example.com"})
	stderr := "  realm: Couldn't join realm:\n    Insufficient permissions\n"
	out := Interpret(inv, &ExecutionResult{ExitCode: 1, Stderr: stderr})

	require.False(t, out.Success)
	require.False(t, out.Changed)
	require.Equal(t, stderr, out.Stderr)
	require.Equal(t,
		"failed to run realm join [--one-time-password ********]:   realm: Couldn't join realm:\n    Insufficient permissions",
		out.Message)
	require.NotContains(t, out.Message, "otp-123")
}
