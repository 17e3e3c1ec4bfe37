package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrBinaryNotFound is returned when the realm program cannot be located.
var ErrBinaryNotFound = stderrors.New("realm binary not found")

// ParseError represents a YAML or TOML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Rule names the class of constraint a ValidationError violated.
type Rule string

const (
	RuleEnum              Rule = "enum"
	RuleFormat            Rule = "format"
	RuleMutuallyExclusive Rule = "mutually_exclusive"
	RuleRequiredTogether  Rule = "required_together"
	RuleRequiredIf        Rule = "required_if"
	RuleRequiredBy        Rule = "required_by"
)

// ValidationError captures a rejected request or configuration value.
type ValidationError struct {
	Field   string
	Fields  []string
	Rule    Rule
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// NewRuleError constructs a ValidationError for a violated cross-field rule.
// The first field is reported as the primary offender.
func NewRuleError(rule Rule, message string, fields ...string) error {
	field := ""
	if len(fields) > 0 {
		field = fields[0]
	}
	return &ValidationError{Field: field, Fields: fields, Rule: rule, Message: message}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("validation error")
	if e.Rule != "" {
		b.WriteString(" [")
		b.WriteString(string(e.Rule))
		b.WriteString("]")
	}
	if len(e.Fields) > 1 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields, ", "))
	} else if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a failure to launch the realm program or a
// non-zero exit from it.
type ExecutionError struct {
	Action   string
	ExitCode int
	Stderr   string
	Err      error
}

// NewExecutionError constructs an ExecutionError for a program that could not be run.
func NewExecutionError(action string, err error) error {
	return &ExecutionError{Action: action, ExitCode: -1, Err: err}
}

// NewExitError constructs an ExecutionError for a program that ran and exited non-zero.
func NewExitError(action string, exitCode int, stderr string, err error) error {
	return &ExecutionError{Action: action, ExitCode: exitCode, Stderr: stderr, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("execution error on %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
