package realm

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action names the realm sub command a request drives.
type Action string

const (
	ActionDiscover Action = "discover"
	ActionList     Action = "list"
	ActionJoin     Action = "join"
	ActionLeave    Action = "leave"
	ActionPermit   Action = "permit"
	ActionDeny     Action = "deny"
)

// Scope selects which principals a permit or deny request applies to.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeUsers  Scope = "users"
	ScopeGroups Scope = "groups"
)

// Request is the flat desired-state parameter set supplied by a caller. Fields
// that do not apply to Action are ignored when flags are built, but may still
// be rejected by Validate.
type Request struct {
	Action             Action   `yaml:"action" json:"action" validate:"required,oneof=discover list join leave permit deny"`
	ClientSoftware     string   `yaml:"client_software,omitempty" json:"client_software,omitempty" validate:"omitempty,oneof=sssd winbind"`
	ComputerName       string   `yaml:"computer_name,omitempty" json:"computer_name,omitempty" validate:"omitempty,netbios"`
	ComputerOU         string   `yaml:"computer_ou,omitempty" json:"computer_ou,omitempty"`
	DiscoverAll        bool     `yaml:"discover_all,omitempty" json:"discover_all,omitempty"`
	DiscoverName       bool     `yaml:"discover_name,omitempty" json:"discover_name,omitempty"`
	ListAll            bool     `yaml:"list_all,omitempty" json:"list_all,omitempty"`
	ListName           bool     `yaml:"list_name,omitempty" json:"list_name,omitempty"`
	MembershipSoftware string   `yaml:"membership_software,omitempty" json:"membership_software,omitempty" validate:"omitempty,oneof=adcli samba"`
	NoPassword         bool     `yaml:"no_password,omitempty" json:"no_password,omitempty"`
	OneTimePassword    string   `yaml:"one_time_password,omitempty" json:"-"`
	OSName             string   `yaml:"os_name,omitempty" json:"os_name,omitempty"`
	OSVersion          string   `yaml:"os_version,omitempty" json:"os_version,omitempty"`
	Password           string   `yaml:"password,omitempty" json:"-"`
	Realm              string   `yaml:"realm,omitempty" json:"realm,omitempty" validate:"omitempty,positional"`
	Remove             bool     `yaml:"remove,omitempty" json:"remove,omitempty"`
	ServerSoftware     string   `yaml:"server_software,omitempty" json:"server_software,omitempty" validate:"omitempty,oneof=active-directory ipa"`
	UseLDAPS           bool     `yaml:"use_ldaps,omitempty" json:"use_ldaps,omitempty"`
	User               string   `yaml:"user,omitempty" json:"user,omitempty"`
	Scope              Scope    `yaml:"scope,omitempty" json:"scope,omitempty" validate:"omitempty,oneof=all users groups"`
	Names              []string `yaml:"names,omitempty" json:"names,omitempty" validate:"omitempty,dive,required,positional"`
}

// UnmarshalYAML accepts "state" as an alias for "action".
func (r *Request) UnmarshalYAML(value *yaml.Node) error {
	type rawRequest Request
	var raw rawRequest
	if err := value.Decode(&raw); err != nil {
		return err
	}

	var alias struct {
		State Action `yaml:"state"`
	}
	if err := value.Decode(&alias); err != nil {
		return err
	}
	if alias.State != "" {
		if raw.Action != "" && raw.Action != alias.State {
			return fmt.Errorf("action %q conflicts with state %q", raw.Action, alias.State)
		}
		raw.Action = alias.State
	}

	*r = Request(raw)
	return nil
}

// Keys returns every YAML key a request accepts, including the "state" alias.
func Keys() []string {
	t := reflect.TypeOf(Request{})
	keys := make([]string, 0, t.NumField()+1)
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("yaml"), ",", 2)[0]
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return append(keys, "state")
}

// Normalize returns a copy of the request with whitespace trimmed, enumerated
// values lower-cased and the permit/deny scope defaulted to all. Secrets are
// left untouched.
func (r Request) Normalize() Request {
	out := r
	out.Action = Action(lower(string(r.Action)))
	out.ClientSoftware = lower(r.ClientSoftware)
	out.MembershipSoftware = lower(r.MembershipSoftware)
	out.ServerSoftware = lower(r.ServerSoftware)
	out.Scope = Scope(lower(string(r.Scope)))

	out.ComputerName = strings.TrimSpace(r.ComputerName)
	out.ComputerOU = strings.TrimSpace(r.ComputerOU)
	out.OSName = strings.TrimSpace(r.OSName)
	out.OSVersion = strings.TrimSpace(r.OSVersion)
	out.Realm = strings.TrimSpace(r.Realm)
	out.User = strings.TrimSpace(r.User)

	out.Names = nil
	for _, name := range r.Names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out.Names = append(out.Names, trimmed)
		}
	}

	if out.Scope == "" && (out.Action == ActionPermit || out.Action == ActionDeny) {
		out.Scope = ScopeAll
	}
	return out
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
