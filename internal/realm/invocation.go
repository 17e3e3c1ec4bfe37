package realm

import (
	"fmt"
	"io"
	"os/exec"

	realmerrors "github.com/alexisbeaulieu97/realmctl/pkg/errors"
)

// DefaultBinary is the program name resolved when no path is configured.
const DefaultBinary = "realm"

// UnattendedFlag suppresses interactive prompts in the realm program.
const UnattendedFlag = "--unattended"

// Invocation is a fully assembled realm command. It is consumed exactly once
// by an Executor; the secret is wiped after it has been written.
type Invocation struct {
	Binary      string
	Action      Action
	Realm       string
	Flags       []string
	Positionals []string

	display []string
	secret  []byte
	used    bool
}

// NewInvocation assembles the command for op against the given binary path.
func NewInvocation(binary string, op Operation) *Invocation {
	inv := &Invocation{
		Binary:      binary,
		Action:      op.Action(),
		Realm:       target(op),
		Flags:       BuildFlags(op),
		Positionals: positionals(op),
		display:     DisplayFlags(op),
	}
	if pw := secret(op); pw != "" {
		inv.secret = []byte(pw)
	}
	return inv
}

// Args returns the arguments passed to the binary, excluding argv[0].
func (i *Invocation) Args() []string {
	args := make([]string, 0, 2+len(i.Flags)+len(i.Positionals))
	args = append(args, string(i.Action), UnattendedFlag)
	args = append(args, i.Flags...)
	args = append(args, i.Positionals...)
	return args
}

// Argv returns the complete token sequence including the binary.
func (i *Invocation) Argv() []string {
	return append([]string{i.Binary}, i.Args()...)
}

// DisplayFlags returns the flags with secret values masked.
func (i *Invocation) DisplayFlags() []string {
	return append([]string(nil), i.display...)
}

// HasSecret reports whether the invocation pipes a secret to stdin.
func (i *Invocation) HasSecret() bool {
	return len(i.secret) > 0
}

// writeSecret writes the secret followed by a newline, closes w and wipes the
// secret buffer regardless of the outcome.
func (i *Invocation) writeSecret(w io.WriteCloser) error {
	defer clear(i.secret)
	payload := append(i.secret, '\n')
	defer clear(payload)

	_, err := w.Write(payload)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (i *Invocation) consume() error {
	if i.used {
		return fmt.Errorf("invocation of %s already executed", i.Action)
	}
	i.used = true
	return nil
}

// ResolveBinary locates the realm program. An empty path resolves
// DefaultBinary on PATH.
func ResolveBinary(path string) (string, error) {
	if path == "" {
		path = DefaultBinary
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", realmerrors.ErrBinaryNotFound, path, err)
	}
	return resolved, nil
}
