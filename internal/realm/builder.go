package realm

import "fmt"

var discoverFlags = []FlagSpec[Discover]{
	boolFlag("discover_all", "--all", func(o Discover) bool { return o.All }),
	valueFlag("client_software", "--client-software", func(o Discover) string { return o.ClientSoftware }),
	boolFlag("discover_name", "--name", func(o Discover) bool { return o.NameOnly }),
	valueFlag("membership_software", "--membership-software", func(o Discover) string { return o.MembershipSoftware }),
	valueFlag("server_software", "--server-software", func(o Discover) string { return o.ServerSoftware }),
	boolFlag("use_ldaps", "--use-ldaps", func(o Discover) bool { return o.UseLDAPS }),
}

var listFlags = []FlagSpec[List]{
	boolFlag("list_all", "--all", func(o List) bool { return o.All }),
	boolFlag("list_name", "--name-only", func(o List) bool { return o.NameOnly }),
}

var joinFlags = []FlagSpec[Join]{
	valueFlag("client_software", "--client-software", func(o Join) string { return o.ClientSoftware }),
	textFlag("computer_name", "--computer-name", func(o Join) string { return o.ComputerName }),
	textFlag("computer_ou", "--computer-ou", func(o Join) string { return o.ComputerOU }),
	valueFlag("membership_software", "--membership-software", func(o Join) string { return o.MembershipSoftware }),
	boolFlag("no_password", "--no-password", func(o Join) bool { return o.NoPassword }),
	secretFlag("one_time_password", "--one-time-password", func(o Join) string { return o.OneTimePassword }),
	textFlag("os_name", "--os-name", func(o Join) string { return o.OSName }),
	textFlag("os_version", "--os-version", func(o Join) string { return o.OSVersion }),
	valueFlag("server_software", "--server-software", func(o Join) string { return o.ServerSoftware }),
	boolFlag("use_ldaps", "--use-ldaps", func(o Join) bool { return o.UseLDAPS }),
	textFlag("user", "--user", func(o Join) string { return o.User }),
}

var leaveFlags = []FlagSpec[Leave]{
	valueFlag("client_software", "--client-software", func(o Leave) string { return o.ClientSoftware }),
	boolFlag("remove", "--remove", func(o Leave) bool { return o.Remove }),
	valueFlag("server_software", "--server-software", func(o Leave) string { return o.ServerSoftware }),
	boolFlag("use_ldaps", "--use-ldaps", func(o Leave) bool { return o.UseLDAPS }),
	textFlag("user", "--user", func(o Leave) string { return o.User }),
}

// permit and deny name the realm with an option; their positionals are principals.
var permitFlags = []FlagSpec[Permit]{
	boolFlag("scope", "--all", func(o Permit) bool { return o.Scope == ScopeAll }),
	boolFlag("scope", "--groups", func(o Permit) bool { return o.Scope == ScopeGroups }),
	textFlag("realm", "--realm", func(o Permit) string { return o.Realm }),
}

var denyFlags = []FlagSpec[Deny]{
	boolFlag("scope", "--all", func(o Deny) bool { return o.Scope == ScopeAll }),
	boolFlag("scope", "--groups", func(o Deny) bool { return o.Scope == ScopeGroups }),
	textFlag("realm", "--realm", func(o Deny) string { return o.Realm }),
}

// BuildFlags maps an operation to its ordered realm option tokens. A flag and
// its value are always separate tokens. BuildFlags is pure: equal operations
// yield equal token sequences.
func BuildFlags(op Operation) []string {
	return buildFlags(op, false)
}

// DisplayFlags is BuildFlags with secret values masked, for logs and messages.
func DisplayFlags(op Operation) []string {
	return buildFlags(op, true)
}

func buildFlags(op Operation, redact bool) []string {
	switch o := op.(type) {
	case Discover:
		return render(o, discoverFlags, redact)
	case List:
		return render(o, listFlags, redact)
	case Join:
		return render(o, joinFlags, redact)
	case Leave:
		return render(o, leaveFlags, redact)
	case Permit:
		return render(o, permitFlags, redact)
	case Deny:
		return render(o, denyFlags, redact)
	default:
		panic(fmt.Sprintf("realm: unhandled operation %T", op))
	}
}

// positionals returns the trailing arguments for an operation: the target
// realm for membership operations, the principal names for permit and deny.
func positionals(op Operation) []string {
	switch o := op.(type) {
	case Permit:
		return append([]string(nil), o.Names...)
	case Deny:
		return append([]string(nil), o.Names...)
	default:
		if realm := target(op); realm != "" {
			return []string{realm}
		}
		return nil
	}
}
