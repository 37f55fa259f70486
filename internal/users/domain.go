package users

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that no user matches the lookup.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicate indicates a username or email collision on insert.
	ErrDuplicate = errors.New("users: duplicate")
)

// User represents a stored account. PasswordHash never leaves the service
// layer: it is excluded from JSON and cleared by Public.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	RoleID       int64      `json:"role_id"`
	RoleName     string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// NewUser carries the fields required to create an account.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	RoleID       int64
}
