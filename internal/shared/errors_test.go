package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewError(ErrConflict, "Email already registered").Wrap(cause)

	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Email already registered: duplicate key", err.Error())
}

func TestWrapDoesNotMutateOriginal(t *testing.T) {
	base := NewError(ErrInvalidToken, "Invalid refresh token")
	_ = base.Wrap(errors.New("sig"))
	assert.Equal(t, "Invalid refresh token", base.Error())
}

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "User not found", UserSafeMessage(fmt.Errorf("profile: %w", NewError(ErrNotFound, "User not found"))))
	assert.Equal(t, "Internal server error", UserSafeMessage(errors.New("db exploded")))
	assert.Equal(t, "Internal server error", UserSafeMessage(NewError(ErrNotFound, " ")))
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithIdentity(context.Background(), Identity{ID: 5, Role: "viewer"})
	got, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, "viewer", got.Role)
}
