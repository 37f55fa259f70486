package rbac

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/shared"
)

// TokenVerifier resolves an access token to the identity it was issued for.
type TokenVerifier interface {
	VerifyIdentity(token string) (shared.Identity, error)
}

var (
	errNoToken          = shared.NewError(shared.ErrUnauthenticated, "No token provided. Authorization header must be 'Bearer <token>'")
	errBadToken         = shared.NewError(shared.ErrUnauthenticated, "Invalid or expired access token")
	errNotAuthenticated = shared.NewError(shared.ErrUnauthenticated, "User not authenticated")
	errNotOwner         = shared.NewError(shared.ErrForbidden, "Access denied. You can only access your own resources")
)

// Gate authenticates bearer tokens and enforces role membership. Claims are
// trusted as issued; the database is not consulted per request.
type Gate struct {
	Verifier  TokenVerifier
	Responder httpx.Responder
	Logger    *slog.Logger
}

// Authenticate requires a valid access token and attaches its identity to the context.
func (g Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			g.Responder.Error(w, r, errNoToken)
			return
		}
		identity, err := g.Verifier.VerifyIdentity(token)
		if err != nil {
			g.Responder.Error(w, r, errBadToken.Wrap(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// OptionalAuth attaches an identity when a valid token is present and never rejects.
func (g Gate) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err == nil {
			if identity, verr := g.Verifier.VerifyIdentity(token); verr == nil {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), identity))
			} else if g.Logger != nil {
				g.Logger.Debug("optional auth ignored token", slog.Any("error", verr))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize admits identities whose role is one of allowed. It must run after Authenticate.
func (g Gate) Authorize(allowed ...string) func(http.Handler) http.Handler {
	normalized := normalizeRoles(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				g.Responder.Error(w, r, errNotAuthenticated)
				return
			}
			if !hasRole(normalized, identity.Role) {
				g.Responder.Error(w, r, forbidden(normalized, identity.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require authorizes the roles the policy grants for op.
func (g Gate) Require(op Operation) func(http.Handler) http.Handler {
	return g.Authorize(AllowedRoles(op)...)
}

// AuthorizeOwner admits admins, or callers whose id equals the numeric path parameter param.
func (g Gate) AuthorizeOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				g.Responder.Error(w, r, errNotAuthenticated)
				return
			}
			if identity.Role == Admin {
				next.ServeHTTP(w, r)
				return
			}
			id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || id != identity.ID {
				g.Responder.Error(w, r, errNotOwner)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(required []string, actual string) error {
	if actual == "" {
		actual = "none"
	}
	msg := fmt.Sprintf("Access denied. Required roles: %s. Your role: %s", strings.Join(required, ", "), actual)
	return shared.NewError(shared.ErrForbidden, msg)
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// normalizeRoles lowercases, trims and de-duplicates while keeping order.
func normalizeRoles(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(strings.ToLower(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func hasRole(allowed []string, role string) bool {
	role = strings.ToLower(role)
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
