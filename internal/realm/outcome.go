package realm

import (
	"fmt"
	"strings"
)

// Outcome is the structured report returned to the caller.
type Outcome struct {
	Action  Action   `json:"action"`
	Realm   string   `json:"realm,omitempty"`
	Flags   []string `json:"flags"`
	Success bool     `json:"success"`
	Changed bool     `json:"changed"`
	Skipped bool     `json:"skipped,omitempty"`
	RC      int      `json:"rc"`
	Stdout  string   `json:"stdout"`
	Stderr  string   `json:"stderr"`
	Message string   `json:"message,omitempty"`
}

// Interpret maps an execution result to an outcome. Exit code 0 is success and
// is always reported as changed, since no prior state is inspected. Any other
// exit code is a failure whose message carries the attempted flags and the
// program's stderr, minus its final line break.
func Interpret(inv *Invocation, res *ExecutionResult) *Outcome {
	out := &Outcome{
		Action: inv.Action,
		Realm:  inv.Realm,
		Flags:  inv.DisplayFlags(),
		RC:     res.ExitCode,
		Stdout: res.Stdout,
		Stderr: res.Stderr,
	}
	if res.ExitCode == 0 {
		out.Success = true
		out.Changed = true
		return out
	}

	out.Message = fmt.Sprintf("failed to run realm %s [%s]: %s",
		inv.Action, strings.Join(out.Flags, " "), strings.TrimRight(res.Stderr, "\r\n"))
	return out
}
