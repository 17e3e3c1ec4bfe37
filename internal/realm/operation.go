package realm

import "fmt"

// Operation is one approved realm sub command carrying only the fields it
// uses. The set of implementations is closed: Discover, List, Join, Leave,
// Permit and Deny.
type Operation interface {
	Action() Action
	operation()
}

// Discover queries network-visible realms and their capabilities.
type Discover struct {
	All                bool
	ClientSoftware     string
	NameOnly           bool
	MembershipSoftware string
	ServerSoftware     string
	UseLDAPS           bool
	Realm              string
}

// List prints the discovered and configured realms.
type List struct {
	All      bool
	NameOnly bool
}

// Join enrolls the host in a realm.
type Join struct {
	ClientSoftware     string
	ComputerName       string
	ComputerOU         string
	MembershipSoftware string
	NoPassword         bool
	OneTimePassword    string
	OSName             string
	OSVersion          string
	ServerSoftware     string
	UseLDAPS           bool
	User               string
	Password           string
	Realm              string
}

// Leave removes the host from a realm.
type Leave struct {
	ClientSoftware string
	Remove         bool
	ServerSoftware string
	UseLDAPS       bool
	User           string
	Password       string
	Realm          string
}

// Permit grants realm logins to all principals or the named users or groups.
type Permit struct {
	Scope Scope
	Names []string
	Realm string
}

// Deny withdraws realm logins from all principals or the named users or groups.
type Deny struct {
	Scope Scope
	Names []string
	Realm string
}

func (Discover) Action() Action { return ActionDiscover }
func (List) Action() Action     { return ActionList }
func (Join) Action() Action     { return ActionJoin }
func (Leave) Action() Action    { return ActionLeave }
func (Permit) Action() Action   { return ActionPermit }
func (Deny) Action() Action     { return ActionDeny }

func (Discover) operation() {}
func (List) operation()     {}
func (Join) operation()     {}
func (Leave) operation()    {}
func (Permit) operation()   {}
func (Deny) operation()     {}

// Operation converts an approved request into its typed operation. Callers
// must run Validate first; Operation only fails on an unknown action.
func (r Request) Operation() (Operation, error) {
	switch r.Action {
	case ActionDiscover:
		return Discover{
			All:                r.DiscoverAll,
			ClientSoftware:     r.ClientSoftware,
			NameOnly:           r.DiscoverName,
			MembershipSoftware: r.MembershipSoftware,
			ServerSoftware:     r.ServerSoftware,
			UseLDAPS:           r.UseLDAPS,
			Realm:              r.Realm,
		}, nil
	case ActionList:
		return List{All: r.ListAll, NameOnly: r.ListName}, nil
	case ActionJoin:
		return Join{
			ClientSoftware:     r.ClientSoftware,
			ComputerName:       r.ComputerName,
			ComputerOU:         r.ComputerOU,
			MembershipSoftware: r.MembershipSoftware,
			NoPassword:         r.NoPassword,
			OneTimePassword:    r.OneTimePassword,
			OSName:             r.OSName,
			OSVersion:          r.OSVersion,
			ServerSoftware:     r.ServerSoftware,
			UseLDAPS:           r.UseLDAPS,
			User:               r.User,
			Password:           r.Password,
			Realm:              r.Realm,
		}, nil
	case ActionLeave:
		return Leave{
			ClientSoftware: r.ClientSoftware,
			Remove:         r.Remove,
			ServerSoftware: r.ServerSoftware,
			UseLDAPS:       r.UseLDAPS,
			User:           r.User,
			Password:       r.Password,
			Realm:          r.Realm,
		}, nil
	case ActionPermit:
		return Permit{Scope: r.Scope, Names: append([]string(nil), r.Names...), Realm: r.Realm}, nil
	case ActionDeny:
		return Deny{Scope: r.Scope, Names: append([]string(nil), r.Names...), Realm: r.Realm}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", r.Action)
	}
}

// target returns the realm an operation is aimed at, if any.
func target(op Operation) string {
	switch o := op.(type) {
	case Discover:
		return o.Realm
	case List:
		return ""
	case Join:
		return o.Realm
	case Leave:
		return o.Realm
	case Permit:
		return o.Realm
	case Deny:
		return o.Realm
	default:
		panic(fmt.Sprintf("realm: unhandled operation %T", op))
	}
}

// secret returns the password an operation pipes to the program's stdin.
func secret(op Operation) string {
	switch o := op.(type) {
	case Join:
		return o.Password
	case Leave:
		return o.Password
	case Discover, List, Permit, Deny:
		return ""
	default:
		panic(fmt.Sprintf("realm: unhandled operation %T", op))
	}
}
