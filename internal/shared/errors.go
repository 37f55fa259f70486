package shared

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a unique key is already taken.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed input outside of password rules.
	ErrValidation = errors.New("validation failed")
	// ErrWeakPassword indicates the password strength rules were not met.
	ErrWeakPassword = errors.New("weak password")
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account exists but is inactive.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidToken indicates a malformed, expired or revoked token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated indicates the request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// Error pairs an error kind with the message shown to clients.
type Error struct {
	Kind    error
	Message string
	Details []string
	cause   error
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap attaches an underlying cause that is logged but never shown to clients.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

// UserSafeMessage returns the client-facing message for err.
func UserSafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return "Internal server error"
}
