package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/submission-service/internal/shared"
)

const issuer = "submission-service"

var (
	// ErrTokenExpired is returned when a token's signature is valid but exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed, tampered or wrongly signed tokens.
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	RoleID   int64  `json:"roleId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the minimal payload of a refresh token.
type RefreshClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenConfig configures TokenService.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService signs and verifies access and refresh tokens with separate keys.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// RefreshTTL reports how long refresh tokens stay valid.
func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.cfg.RefreshTTL
}

// GenerateAccessToken signs claims and returns the token with its expiry.
func (ts *TokenService) GenerateAccessToken(claims AccessClaims) (string, time.Time, error) {
	expiresAt := ts.stamp(&claims.RegisteredClaims, claims.UserID, ts.cfg.AccessTTL)
	token, err := sign(&claims, ts.cfg.AccessSecret)
	return token, expiresAt, err
}

// GenerateRefreshToken signs a refresh token for userID. Every call yields a
// distinct token because each carries a fresh jti.
func (ts *TokenService) GenerateRefreshToken(userID int64) (string, time.Time, error) {
	claims := RefreshClaims{UserID: userID}
	expiresAt := ts.stamp(&claims.RegisteredClaims, userID, ts.cfg.RefreshTTL)
	token, err := sign(&claims, ts.cfg.RefreshSecret)
	return token, expiresAt, err
}

// VerifyAccessToken checks signature and expiry of an access token.
func (ts *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.parse(token, claims, ts.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
func (ts *TokenService) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.parse(token, claims, ts.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyIdentity verifies an access token and returns the identity it carries.
func (ts *TokenService) VerifyIdentity(token string) (shared.Identity, error) {
	claims, err := ts.VerifyAccessToken(token)
	if err != nil {
		return shared.Identity{}, err
	}
	return shared.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		RoleID:   claims.RoleID,
	}, nil
}

// DecodeUnverified returns the claims of token WITHOUT verifying its signature.
// Diagnostics only: never base a trust decision on the result.
func DecodeUnverified(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

func (ts *TokenService) stamp(rc *jwt.RegisteredClaims, userID int64, ttl time.Duration) time.Time {
	now := ts.now()
	expiresAt := now.Add(ttl)
	rc.Issuer = issuer
	rc.Subject = strconv.FormatInt(userID, 10)
	rc.IssuedAt = jwt.NewNumericDate(now)
	rc.ExpiresAt = jwt.NewNumericDate(expiresAt)
	rc.ID = uuid.NewString()
	return expiresAt
}

func (ts *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return ErrTokenInvalid
	}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return nil
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
