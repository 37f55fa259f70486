package auth

import (
	"time"

	"github.com/noah-isme/submission-service/internal/users"
)

// RefreshToken is one persisted login session.
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User         users.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    string     `json:"expiresIn"`
}

// RefreshResult is returned by a successful Refresh.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   string `json:"expiresIn"`
}
