package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/realmctl/internal/realm"
	realmerrors "github.com/alexisbeaulieu97/realmctl/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern  = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	entryIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("entry_id", func(fl validator.FieldLevel) bool {
			return entryIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateDocument performs schema validation on the document and runs the
// realm request rules against every entry.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return realmerrors.NewValidationError("document", "document is nil", nil)
	}

	if err := validatorInstance().Struct(doc); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(doc.Requests))
	for i, entry := range doc.Requests {
		if first, exists := seen[entry.ID]; exists {
			return realmerrors.NewValidationError(fieldForEntry(i, "id"),
				fmt.Sprintf("duplicate request id %q (first used by requests[%d])", entry.ID, first), nil)
		}
		seen[entry.ID] = i

		req := entry.Request
		if entry.PasswordEnv != "" {
			if req.Password != "" {
				return realmerrors.NewValidationError(fieldForEntry(i, "password_env"), "password and password_env are mutually exclusive", nil)
			}
			// Stand-in so password rules are checked before the variable is read.
			req.Password = "from-env"
		}

		if err := realm.Validate(req.Normalize()); err != nil {
			return prefixValidationError(i, err)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return realmerrors.NewValidationError(field, msg, err)
	}

	return realmerrors.NewValidationError("document", err.Error(), err)
}

// prefixValidationError re-roots a request-level validation error under requests[i].
func prefixValidationError(index int, err error) error {
	var ve *realmerrors.ValidationError
	if !errors.As(err, &ve) {
		return realmerrors.NewValidationError(fieldForEntry(index, "request"), err.Error(), err)
	}

	fields := make([]string, len(ve.Fields))
	for j, f := range ve.Fields {
		fields[j] = fieldForEntry(index, f)
	}
	return &realmerrors.ValidationError{
		Field:   fieldForEntry(index, ve.Field),
		Fields:  fields,
		Rule:    ve.Rule,
		Message: ve.Message,
		Err:     err,
	}
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForEntry(index int, field string) string {
	return fmt.Sprintf("requests[%d].%s", index, field)
}
