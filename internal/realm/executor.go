package realm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// ExecutionResult is the captured outcome of one realm process.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs an invocation and captures its result. A non-zero exit is a
// result, not an error; errors mean the program could not be run at all.
type Executor interface {
	Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error)
}

// CommandExecutor runs invocations as child processes without a shell.
type CommandExecutor struct {
	// Stream, when set, receives a copy of the child's stdout and stderr as
	// they are produced.
	Stream io.Writer
	// Env overrides the child's environment. Nil inherits the parent's.
	Env []string
}

var _ Executor = (*CommandExecutor)(nil)

// Execute blocks until the process exits or ctx is cancelled, in which case
// the child is killed.
func (e *CommandExecutor) Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	if err := inv.consume(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args()...)
	cmd.Env = e.Env
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if e.Stream != nil {
		cmd.Stdout = io.MultiWriter(e.Stream, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(e.Stream, &stderrBuf)
	}

	var stdin io.WriteCloser
	if inv.HasSecret() {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			clear(inv.secret)
			return nil, fmt.Errorf("open stdin: %w", err)
		}
		stdin = pipe
	}

	if err := cmd.Start(); err != nil {
		clear(inv.secret)
		return nil, fmt.Errorf("start %s: %w", inv.Binary, err)
	}

	var writeErr error
	if stdin != nil {
		writeErr = inv.writeSecret(stdin)
	}

	waitErr := cmd.Wait()
	result := &ExecutionResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s %s interrupted: %w", inv.Binary, inv.Action, ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("wait %s: %w", inv.Binary, waitErr)
		}
	}

	// The child may exit before reading stdin; a broken pipe is not a failure.
	if writeErr != nil && !errors.Is(writeErr, syscall.EPIPE) && !errors.Is(writeErr, os.ErrClosed) {
		return result, fmt.Errorf("write secret to %s: %w", inv.Binary, writeErr)
	}

	return result, nil
}
