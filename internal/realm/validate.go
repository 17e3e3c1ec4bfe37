package realm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	realmerrors "github.com/alexisbeaulieu97/realmctl/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	netbiosForbidden = `\/:*?"<>|`
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("netbios", func(fl validator.FieldLevel) bool {
			name := fl.Field().String()
			return len(name) > 0 && len(name) <= 15 && !strings.ContainsAny(name, netbiosForbidden)
		})

		// Positional arguments must not be mistaken for options by the realm program.
		_ = v.RegisterValidation("positional", func(fl validator.FieldLevel) bool {
			return !strings.HasPrefix(fl.Field().String(), "-")
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks a normalized request and returns the first violated rule.
// Rules run in a fixed order: enumerations and formats, mutual exclusion,
// action scoping, required-if, required-by, then permit/deny scope rules.
// Validate never has side effects.
func Validate(req Request) error {
	if err := validatorInstance().Struct(req); err != nil {
		return convertValidationError(err)
	}

	for _, check := range []func(Request) error{
		checkMutuallyExclusive,
		checkActionScope,
		checkRequiredIf,
		checkRequiredBy,
		checkACLScope,
	} {
		if err := check(req); err != nil {
			return err
		}
	}
	return nil
}

func checkMutuallyExclusive(req Request) error {
	var set []string
	if req.NoPassword {
		set = append(set, "no_password")
	}
	if req.OneTimePassword != "" {
		set = append(set, "one_time_password")
	}
	if req.Password != "" {
		set = append(set, "password")
	}
	if len(set) > 1 {
		return realmerrors.NewRuleError(realmerrors.RuleMutuallyExclusive,
			fmt.Sprintf("parameters are mutually exclusive: %s", strings.Join(set, "|")), set...)
	}
	return nil
}

type scopedField struct {
	name   string
	set    func(Request) bool
	action []Action
}

var scopedFields = []scopedField{
	{name: "discover_all", set: func(r Request) bool { return r.DiscoverAll }, action: []Action{ActionDiscover}},
	{name: "discover_name", set: func(r Request) bool { return r.DiscoverName }, action: []Action{ActionDiscover}},
	{name: "list_all", set: func(r Request) bool { return r.ListAll }, action: []Action{ActionList}},
	{name: "list_name", set: func(r Request) bool { return r.ListName }, action: []Action{ActionList}},
	{name: "remove", set: func(r Request) bool { return r.Remove }, action: []Action{ActionLeave}},
	{name: "names", set: func(r Request) bool { return len(r.Names) > 0 }, action: []Action{ActionPermit, ActionDeny}},
	{name: "scope", set: func(r Request) bool { return r.Scope != "" && r.Scope != ScopeAll }, action: []Action{ActionPermit, ActionDeny}},
}

func checkActionScope(req Request) error {
	for _, field := range scopedFields {
		if !field.set(req) || containsAction(field.action, req.Action) {
			continue
		}
		return realmerrors.NewRuleError(realmerrors.RuleRequiredTogether,
			fmt.Sprintf("%s requires action=%s, got action=%s", field.name, joinActions(field.action), req.Action),
			field.name, "action")
	}
	return nil
}

func checkRequiredIf(req Request) error {
	if req.UseLDAPS {
		if missing := missingFields(
			namedValue{"membership_software", req.MembershipSoftware},
			namedValue{"server_software", req.ServerSoftware},
		); len(missing) > 0 {
			return realmerrors.NewRuleError(realmerrors.RuleRequiredIf,
				fmt.Sprintf("use_ldaps is True but missing: %s", strings.Join(missing, ", ")),
				append([]string{"use_ldaps"}, missing...)...)
		}
	}
	if req.Remove {
		if missing := missingFields(
			namedValue{"user", req.User},
			namedValue{"password", req.Password},
		); len(missing) > 0 {
			return realmerrors.NewRuleError(realmerrors.RuleRequiredIf,
				fmt.Sprintf("remove is True but missing: %s", strings.Join(missing, ", ")),
				append([]string{"remove"}, missing...)...)
		}
	}
	return nil
}

func checkRequiredBy(req Request) error {
	if req.Password != "" && req.User == "" {
		return realmerrors.NewRuleError(realmerrors.RuleRequiredBy,
			"missing parameter(s) required by 'password': user", "password", "user")
	}
	return nil
}

func checkACLScope(req Request) error {
	if req.Action != ActionPermit && req.Action != ActionDeny {
		return nil
	}
	switch req.Scope {
	case ScopeAll:
		if len(req.Names) > 0 {
			return realmerrors.NewRuleError(realmerrors.RuleFormat, "scope=all does not accept names", "names", "scope")
		}
	case ScopeUsers, ScopeGroups:
		if len(req.Names) == 0 {
			return realmerrors.NewRuleError(realmerrors.RuleRequiredIf,
				fmt.Sprintf("scope=%s requires at least one name", req.Scope), "names", "scope")
		}
	}
	return nil
}

func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return realmerrors.NewValidationError("request", err.Error(), err)
	}

	fe := ves[0]
	field := fe.Field()
	rule := realmerrors.RuleFormat
	var msg string
	switch fe.Tag() {
	case "oneof":
		rule = realmerrors.RuleEnum
		msg = fmt.Sprintf("value of %s must be one of: %s, got: %v", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "netbios":
		msg = fmt.Sprintf("%s must be a NetBIOS name of at most 15 characters", field)
	case "positional":
		msg = fmt.Sprintf("%s must not start with '-'", field)
	default:
		msg = fmt.Sprintf("%s failed validation for tag '%s'", field, fe.Tag())
	}

	return &realmerrors.ValidationError{Field: field, Fields: []string{field}, Rule: rule, Message: msg, Err: err}
}

type namedValue struct {
	name  string
	value string
}

func missingFields(values ...namedValue) []string {
	var missing []string
	for _, v := range values {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

func containsAction(actions []Action, target Action) bool {
	for _, a := range actions {
		if a == target {
			return true
		}
	}
	return false
}

func joinActions(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, "|")
}
