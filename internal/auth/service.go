package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/noah-isme/submission-service/internal/roles"
	"github.com/noah-isme/submission-service/internal/shared"
	"github.com/noah-isme/submission-service/internal/users"
)

// UserStore is the subset of the credential store used by Service.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByUsername(ctx context.Context, username string) (*users.User, error)
	FindByID(ctx context.Context, id int64) (*users.User, error)
	Create(ctx context.Context, in users.NewUser) (*users.User, error)
	UpdateLastLogin(ctx context.Context, id int64) (int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (int64, error)
}

// RoleResolver resolves role names to stored definitions.
type RoleResolver interface {
	ListRoles(ctx context.Context) ([]roles.Role, error)
	GetByName(ctx context.Context, name string) (roles.Role, error)
}

// Ledger persists issued refresh tokens. Find returns nil when no live record exists.
type Ledger interface {
	Store(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	DeleteOne(ctx context.Context, token string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

// EventRecorder counts auth outcomes.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

var (
	errInvalidLogin    = shared.NewError(shared.ErrInvalidCredentials, "Invalid email or password")
	errInvalidRefresh  = shared.NewError(shared.ErrInvalidToken, "Invalid refresh token")
	errExpiredRefresh  = shared.NewError(shared.ErrInvalidToken, "Refresh token expired")
	errUserNotFound    = shared.NewError(shared.ErrNotFound, "User not found")
	errLoginDisabled   = shared.NewError(shared.ErrAccountDisabled, "Account is deactivated. Please contact administrator")
	errRefreshDisabled = shared.NewError(shared.ErrAccountDisabled, "Account is deactivated")
	errWrongPassword   = shared.NewError(shared.ErrInvalidCredentials, "Current password is incorrect")
	errInvalidRole     = shared.NewError(shared.ErrInvalidRole, "Invalid role specified")
	errEmailTaken      = shared.NewError(shared.ErrConflict, "Email already registered")
	errUsernameTaken   = shared.NewError(shared.ErrConflict, "Username already taken")
)

// Deps groups the collaborators of Service.
type Deps struct {
	Users  UserStore
	Roles  RoleResolver
	Ledger Ledger
	Hasher *PasswordHasher
	Tokens *TokenService
	Events EventRecorder
	Logger *slog.Logger

	// ExpiresIn is reported to clients next to each access token, e.g. "15m".
	ExpiresIn string
}

// Service implements registration, login and session lifecycle.
type Service struct {
	users     UserStore
	roles     RoleResolver
	ledger    Ledger
	hasher    *PasswordHasher
	tokens    *TokenService
	expiresIn string
	events    EventRecorder
	logger    *slog.Logger
	dummyHash string
}

// NewService constructs a Service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// Compared against on unknown emails so both login failures cost one bcrypt run.
	dummy, err := d.Hasher.Hash("not-a-real-password")
	if err != nil {
		logger.Warn("dummy hash", slog.Any("error", err))
	}
	return &Service{
		users:     d.Users,
		roles:     d.Roles,
		ledger:    d.Ledger,
		hasher:    d.Hasher,
		tokens:    d.Tokens,
		expiresIn: d.ExpiresIn,
		events:    d.Events,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Register creates an account. No token is issued.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user *users.User, err error) {
	defer func() { s.record("register", err) }()

	if res := ValidateStrength(in.Password); !res.IsValid {
		return nil, shared.NewError(shared.ErrWeakPassword, strings.Join(res.Errors, ", "), res.Errors...)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}

	roleName := in.Role
	if roleName == "" {
		roleName = roles.Default
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, roles.ErrNotFound) {
			return nil, errInvalidRole
		}
		return nil, fmt.Errorf("register: resolve role: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	created, err := s.users.Create(ctx, users.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			return nil, shared.NewError(shared.ErrConflict, "Email or username already registered").Wrap(err)
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}
	public := created.Public()
	return &public, nil
}

// Login verifies credentials and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	defer func() { s.record("login", err) }()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.hasher.Compare(password, s.dummyHash)
			return nil, errInvalidLogin
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}
	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, errInvalidLogin
	}
	if !user.IsActive {
		return nil, errLoginDisabled
	}

	if _, err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("login: update last login: %w", err)
	}
	now := s.tokens.now().UTC()
	user.LastLogin = &now

	access, _, err := s.tokens.GenerateAccessToken(accessClaimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, refreshExp, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.ledger.Store(ctx, user.ID, refresh, refreshExp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &LoginResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself stays valid until it expires or is logged out.
func (s *Service) Refresh(ctx context.Context, token string) (result *RefreshResult, err error) {
	defer func() { s.record("refresh", err) }()

	if _, err := s.tokens.VerifyRefreshToken(token); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, errExpiredRefresh.Wrap(err)
		}
		return nil, errInvalidRefresh.Wrap(err)
	}

	rec, err := s.ledger.Find(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if rec == nil {
		return nil, errInvalidRefresh
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("refresh: lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, errRefreshDisabled
	}

	access, _, err := s.tokens.GenerateAccessToken(accessClaimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &RefreshResult{AccessToken: access, ExpiresIn: s.expiresIn}, nil
}

// Logout ends the session identified by token. An empty or unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	defer func() { s.record("logout", err) }()
	if token == "" {
		return nil
	}
	if _, err := s.ledger.DeleteOne(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll ends every session of userID.
func (s *Service) LogoutAll(ctx context.Context, userID int64) (err error) {
	defer func() { s.record("logout_all", err) }()
	removed, err := s.ledger.DeleteAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	s.logger.Debug("sessions revoked", slog.Int64("user_id", userID), slog.Int64("count", removed))
	return nil
}

// Profile returns the stored account for userID.
func (s *Service) Profile(ctx context.Context, userID int64) (*users.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	public := user.Public()
	return &public, nil
}

// ChangePassword replaces the password and revokes every session of the user.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (err error) {
	defer func() { s.record("change_password", err) }()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("change password: lookup: %w", err)
	}
	if !s.hasher.Compare(oldPassword, user.PasswordHash) {
		return errWrongPassword
	}
	if res := ValidateStrength(newPassword); !res.IsValid {
		return shared.NewError(shared.ErrWeakPassword, strings.Join(res.Errors, ", "), res.Errors...)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	updated, err := s.users.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return fmt.Errorf("change password: update: %w", err)
	}
	if updated == 0 {
		return errUserNotFound
	}
	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("change password: revoke sessions: %w", err)
	}
	return nil
}

// Roles returns every role definition.
func (s *Service) Roles(ctx context.Context) ([]roles.Role, error) {
	list, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return list, nil
}

func (s *Service) record(event string, err error) {
	if s.events == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = outcomeFor(err)
	}
	s.events.AuthEvent(event, outcome)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, shared.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, shared.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, shared.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, shared.ErrConflict):
		return "conflict"
	case errors.Is(err, shared.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func accessClaimsFor(u *users.User) AccessClaims {
	return AccessClaims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.RoleName,
		RoleID:   u.RoleID,
	}
}
