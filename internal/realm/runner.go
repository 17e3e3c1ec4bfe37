package realm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/realmctl/internal/logger"
	realmerrors "github.com/alexisbeaulieu97/realmctl/pkg/errors"
)

// Recorder persists outcomes after each run.
type Recorder interface {
	Record(ctx context.Context, out *Outcome) error
}

// Options configures a Runner.
type Options struct {
	// BinaryPath is resolved with exec.LookPath; empty means DefaultBinary.
	BinaryPath string
	// ProbeState reads `realm list` before join and leave so that runs which
	// would not change anything report changed=false.
	ProbeState bool
	// Timeout bounds each run. Zero means no timeout.
	Timeout  time.Duration
	Executor Executor
	Recorder Recorder
	Logger   *logger.Logger
}

// Runner drives one request through validation, flag building, execution and
// interpretation. It holds no per-request state and may be reused.
type Runner struct {
	binary   string
	probe    bool
	timeout  time.Duration
	executor Executor
	recorder Recorder
	log      *logger.Logger
}

// NewRunner constructs a Runner from opts.
func NewRunner(opts Options) *Runner {
	executor := opts.Executor
	if executor == nil {
		executor = &CommandExecutor{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		binary:   opts.BinaryPath,
		probe:    opts.ProbeState,
		timeout:  opts.Timeout,
		executor: executor,
		recorder: opts.Recorder,
		log:      log,
	}
}

// Run validates req and, if approved, executes it. Validation failures return
// a *errors.ValidationError and no outcome. Launch failures and interruptions
// return an *errors.ExecutionError and no outcome, but are recorded with rc -1.
// A non-zero exit returns both the failed outcome and an *errors.ExecutionError
// carrying its stderr.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	log := r.log.WithContext(ctx).WithFields(map[string]any{"action": string(req.Action)})

	op, err := r.Prepare(req)
	if err != nil {
		log.Error(err, "request rejected")
		return nil, err
	}

	binary, err := ResolveBinary(r.binary)
	if err != nil {
		log.Error(err, "realm program unavailable")
		r.record(ctx, log, launchFailure(op, err))
		return nil, realmerrors.NewExecutionError(string(op.Action()), err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if r.probe && probeable(op) {
		eval, err := evaluate(ctx, r.executor, binary, op)
		switch {
		case err != nil:
			log.WithFields(map[string]any{"error": err.Error()}).Warn("state probe failed, running anyway")
		case !eval.RequiresAction:
			out := &Outcome{Action: op.Action(), Realm: target(op), Flags: DisplayFlags(op), Success: true, Skipped: true, Message: eval.Message}
			log.WithFields(map[string]any{"realm": out.Realm}).Info(eval.Message)
			r.record(ctx, log, out)
			return out, nil
		default:
			log.Debug(eval.Message)
		}
	}

	inv := NewInvocation(binary, op)
	log = log.WithFields(map[string]any{"flags": strings.Join(inv.DisplayFlags(), " "), "realm": inv.Realm})
	log.Debug("running realm")

	start := time.Now()
	res, err := r.executor.Execute(ctx, inv)
	if err != nil {
		log.Error(err, "realm could not be run")
		r.record(context.WithoutCancel(ctx), log, launchFailure(op, err))
		return nil, realmerrors.NewExecutionError(string(op.Action()), err)
	}

	out := Interpret(inv, res)
	log = log.WithFields(map[string]any{"rc": out.RC, "duration_ms": time.Since(start).Milliseconds()})
	r.record(ctx, log, out)

	if !out.Success {
		err := realmerrors.NewExitError(string(out.Action), out.RC, res.Stderr, errors.New(out.Message))
		log.Error(err, "realm failed")
		return out, err
	}

	log.Info("realm succeeded")
	return out, nil
}

// Prepare normalizes and validates req and returns its typed operation
// without running anything.
func (r *Runner) Prepare(req Request) (Operation, error) {
	normalized := req.Normalize()
	if err := Validate(normalized); err != nil {
		return nil, err
	}
	return normalized.Operation()
}

// Plan returns the argv that Run would execute for req, with secrets masked.
// The binary is not resolved.
func (r *Runner) Plan(req Request) ([]string, error) {
	op, err := r.Prepare(req)
	if err != nil {
		return nil, err
	}
	binary := r.binary
	if binary == "" {
		binary = DefaultBinary
	}
	inv := NewInvocation(binary, op)
	clear(inv.secret)
	args := append([]string{binary, string(inv.Action), UnattendedFlag}, inv.DisplayFlags()...)
	return append(args, inv.Positionals...), nil
}

func (r *Runner) record(ctx context.Context, log *logger.Logger, out *Outcome) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, out); err != nil {
		log.Error(err, "journal write failed")
	}
}

// launchFailure describes a run that never produced an exit status.
func launchFailure(op Operation, err error) *Outcome {
	return &Outcome{
		Action:  op.Action(),
		Realm:   target(op),
		Flags:   DisplayFlags(op),
		RC:      -1,
		Message: fmt.Sprintf("failed to run realm %s: %v", op.Action(), err),
	}
}
