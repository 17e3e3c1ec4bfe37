// Package settings loads the realmctl tool settings from a TOML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	realmerrors "github.com/alexisbeaulieu97/realmctl/pkg/errors"
)

// DefaultPath is read when no --settings flag is given. A missing file at the
// default path is not an error.
const DefaultPath = "/etc/realmctl/settings.toml"

// Settings are the tool-wide knobs that do not belong to a single request.
type Settings struct {
	BinaryPath  string `toml:"binary_path" default:"realm" validate:"required"`
	LogLevel    string `toml:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat   string `toml:"log_format" default:"human" validate:"oneof=human json"`
	ProbeState  bool   `toml:"probe_state"`
	Timeout     string `toml:"timeout" validate:"omitempty,duration"`
	JournalPath string `toml:"journal_path"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			return strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
		})
		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			d, err := time.ParseDuration(fl.Field().String())
			return err == nil && d > 0
		})
		validateInst = v
	})
	return validateInst
}

// Default returns settings with every default applied.
func Default() Settings {
	var s Settings
	_ = defaults.Set(&s)
	return s
}

// Load reads path and applies defaults for every key the file leaves out.
// When path is empty DefaultPath is tried and silently skipped if absent.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, realmerrors.NewParseError(path, 0, err)
	}

	var s Settings
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, realmerrors.NewParseError(path, tomlLine(err), err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return Settings{}, realmerrors.NewParseError(path, 0, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")))
	}

	if err := defaults.Set(&s); err != nil {
		return Settings{}, fmt.Errorf("apply settings defaults: %w", err)
	}

	s.BinaryPath = strings.TrimSpace(s.BinaryPath)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	s.Timeout = strings.TrimSpace(s.Timeout)
	s.JournalPath = strings.TrimSpace(s.JournalPath)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks enumerations and formats.
func (s Settings) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			field := fe.Field()
			return &realmerrors.ValidationError{
				Field:   field,
				Fields:  []string{field},
				Rule:    ruleFor(fe.Tag()),
				Message: fmt.Sprintf("%s: invalid value %q (%s)", field, fmt.Sprint(fe.Value()), describe(fe)),
				Err:     err,
			}
		}
		return realmerrors.NewValidationError("settings", err.Error(), err)
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, or zero when none is set.
func (s Settings) TimeoutDuration() time.Duration {
	if s.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// HumanLogs reports whether logs should use the console writer.
func (s Settings) HumanLogs() bool {
	return s.LogFormat != "json"
}

func ruleFor(tag string) realmerrors.Rule {
	if tag == "oneof" {
		return realmerrors.RuleEnum
	}
	return realmerrors.RuleFormat
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "duration":
		return "must be a positive duration such as 30s or 5m"
	case "required":
		return "must not be empty"
	default:
		return "failed " + fe.Tag()
	}
}

func tomlLine(err error) int {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return perr.Position.Line
	}
	return 0
}
