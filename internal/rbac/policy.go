package rbac

import "github.com/noah-isme/submission-service/internal/roles"

// Role names re-exported for route declarations.
const (
	Admin   = roles.Admin
	Manager = roles.Manager
	User    = roles.User
	Viewer  = roles.Viewer
)

// Operation is a CRUD action on a managed resource.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

var matrix = map[Operation][]string{
	OpCreate: {Admin, Manager, User},
	OpRead:   {Admin, Manager, User, Viewer},
	OpUpdate: {Admin, Manager},
	OpDelete: {Admin},
}

// AllowedRoles returns the roles permitted to perform op. Unknown operations allow nobody.
func AllowedRoles(op Operation) []string {
	allowed := matrix[op]
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

// Can reports whether role may perform op.
func Can(role string, op Operation) bool {
	return hasRole(matrix[op], role)
}
