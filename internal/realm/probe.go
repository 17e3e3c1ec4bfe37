package realm

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// Evaluation is the read-only assessment made before a mutating operation.
type Evaluation struct {
	RequiresAction bool
	Message        string
}

// probeable reports whether an operation's current state can be read with
// `realm list --name-only`. Only join and leave with a named realm qualify.
func probeable(op Operation) bool {
	switch o := op.(type) {
	case Join:
		return o.Realm != ""
	case Leave:
		return o.Realm != ""
	default:
		return false
	}
}

// evaluate lists the configured realms and decides whether op would change
// anything. It never mutates state.
func evaluate(ctx context.Context, exec Executor, binary string, op Operation) (*Evaluation, error) {
	inv := NewInvocation(binary, List{NameOnly: true})
	res, err := exec.Execute(ctx, inv)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("realm list exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	joined := containsRealm(res.Stdout, target(op))
	switch op.(type) {
	case Join:
		if joined {
			return &Evaluation{Message: fmt.Sprintf("already joined to %s", target(op))}, nil
		}
		return &Evaluation{RequiresAction: true, Message: fmt.Sprintf("not joined to %s", target(op))}, nil
	case Leave:
		if !joined {
			return &Evaluation{Message: fmt.Sprintf("not joined to %s", target(op))}, nil
		}
		return &Evaluation{RequiresAction: true, Message: fmt.Sprintf("joined to %s", target(op))}, nil
	default:
		return &Evaluation{RequiresAction: true}, nil
	}
}

// containsRealm matches realm names case-insensitively, one per line.
func containsRealm(listing, name string) bool {
	scanner := bufio.NewScanner(strings.NewReader(listing))
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), name) {
			return true
		}
	}
	return false
}
