package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type passwordFlags struct {
	ask   bool
	stdin bool
}

func (p *passwordFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.ask, "ask-password", false, "Prompt for the password without echo")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "Read the password from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("ask-password", "password-stdin")
}

// terminalFd reports the descriptor of in when it is an interactive terminal.
var terminalFd = func(in io.Reader) (int, bool) {
	file, ok := in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(file.Fd())
	return fd, term.IsTerminal(fd)
}

// readPasswordFd is swapped in tests.
var readPasswordFd = term.ReadPassword

// resolve returns the password requested by the flags, or "" when neither is set.
func (p *passwordFlags) resolve(cmd *cobra.Command) (string, error) {
	switch {
	case p.ask:
		fd, ok := terminalFd(cmd.InOrStdin())
		if !ok {
			return "", errors.New("--ask-password needs an interactive terminal; use --password-stdin instead")
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		secret, err := readPasswordFd(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	case p.stdin:
		return readPasswordLine(cmd.InOrStdin())
	default:
		return "", nil
	}
}

func readPasswordLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
