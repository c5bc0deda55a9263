package contract

import "context"

// Access is the access level an endpoint requires.
type Access int

// Access levels. They are not ordered: each one has its own predicate.
const (
	Public Access = iota + 1
	User
	Admin
)

// RoleAdmin is the role marker that grants Admin access.
const RoleAdmin = "admin"

// String returns the level name used in logs.
func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Caller is the identity behind a request, resolved from session state.
type Caller struct {
	UserID   int64
	Username string
	Role     string
}

// SessionSource yields the caller of the current request. A nil caller with a
// nil error means the request is anonymous.
type SessionSource interface {
	CurrentCaller(ctx context.Context) (*Caller, error)
}

// Authorize reports whether caller satisfies level. Unknown levels never pass.
func Authorize(level Access, caller *Caller) bool {
	switch level {
	case Public:
		return true
	case User:
		return caller != nil
	case Admin:
		return caller != nil && caller.Role == RoleAdmin
	default:
		return false
	}
}
