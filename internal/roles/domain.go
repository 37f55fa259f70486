package roles

import "errors"

// Fixed role names. Roles are seeded out-of-band and read-only at runtime.
const (
	Admin   = "admin"
	Manager = "manager"
	User    = "user"
	Viewer  = "viewer"
)

// Default is assigned when registration omits a role.
const Default = User

// ErrNotFound indicates that no role matches the lookup.
var ErrNotFound = errors.New("roles: not found")

// Role represents a named permission tier.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Names lists every known role in ascending privilege order.
func Names() []string {
	return []string{Viewer, User, Manager, Admin}
}

// IsKnown reports whether name is one of the fixed role names.
func IsKnown(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}
