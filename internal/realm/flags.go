package realm

import "strings"

// FlagSpec binds one operation field to the realm option it renders to.
// A spec with Bool set is a presence-only flag; otherwise Value supplies the
// token that follows the flag. Specs are immutable and shared across calls.
type FlagSpec[T Operation] struct {
	Field     string
	Token     string
	Bool      func(T) bool
	Value     func(T) string
	Transform func(string) string
	Secret    bool
}

func boolFlag[T Operation](field, token string, get func(T) bool) FlagSpec[T] {
	return FlagSpec[T]{Field: field, Token: token, Bool: get}
}

func valueFlag[T Operation](field, token string, get func(T) string) FlagSpec[T] {
	return FlagSpec[T]{Field: field, Token: token, Value: get}
}

func textFlag[T Operation](field, token string, get func(T) string) FlagSpec[T] {
	return FlagSpec[T]{Field: field, Token: token, Value: get, Transform: strings.TrimSpace}
}

func secretFlag[T Operation](field, token string, get func(T) string) FlagSpec[T] {
	return FlagSpec[T]{Field: field, Token: token, Value: get, Secret: true}
}

// redacted replaces secret flag values in display output.
const redacted = "********"

// render appends the tokens for every set field, in slice order. Unset, false
// and empty fields contribute nothing.
func render[T Operation](op T, specs []FlagSpec[T], redact bool) []string {
	tokens := make([]string, 0, len(specs)*2)
	for _, spec := range specs {
		if spec.Bool != nil {
			if spec.Bool(op) {
				tokens = append(tokens, spec.Token)
			}
			continue
		}

		value := spec.Value(op)
		if spec.Transform != nil {
			value = spec.Transform(value)
		}
		if value == "" {
			continue
		}
		if redact && spec.Secret {
			value = redacted
		}
		tokens = append(tokens, spec.Token, value)
	}
	return tokens
}
