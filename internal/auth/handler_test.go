package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/rbac"
)

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Error   *httpx.ErrorDetail `json:"error"`
	Errors  json.RawMessage    `json:"errors"`
}

func newTestServer(t *testing.T) (*httptest.Server, *fixture) {
	t.Helper()
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	responder := httpx.Responder{Logger: logger}
	gate := rbac.Gate{Verifier: f.tokens, Responder: responder}

	r := chi.NewRouter()
	r.Route("/api/auth", NewHandler(logger, f.svc, gate, responder).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, f
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestAuthFlowOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": strongPassword,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", env.Message)
	assert.NotContains(t, string(env.Data), "password")

	status, env = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": strongPassword,
	})
	require.Equal(t, http.StatusOK, status)
	var login LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "user", login.User.RoleName)

	status, env = call(t, srv, http.MethodGet, "/api/auth/profile", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "alice@example.com")

	status, env = call(t, srv, http.MethodGet, "/api/auth/roles", login.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Access denied. Required roles: admin. Your role: user", env.Error.Message)

	status, _ = call(t, srv, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, srv, http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged out successfully", env.Message)

	status, env = call(t, srv, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestAdminListsRoles(t *testing.T) {
	srv, f := newTestServer(t)
	f.register(t, "root", "admin@example.com", "admin")
	res, err := f.svc.Login(t.Context(), "admin@example.com", strongPassword)
	require.NoError(t, err)

	status, env := call(t, srv, http.MethodGet, "/api/auth/roles", res.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 4)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := call(t, srv, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "No token provided")

	status, _ = call(t, srv, http.MethodPost, "/api/auth/logout-all", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "a!", "email": "nope", "password": "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Errors), "email")

	status, env = call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bobby", "email": "bob@example.com", "password": "lowercase1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Message, "uppercase")
}

func TestLogoutWithoutBody(t *testing.T) {
	srv, _ := newTestServer(t)
	status, env := call(t, srv, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestChangePasswordOverHTTP(t *testing.T) {
	srv, f := newTestServer(t)
	f.register(t, "alice", "alice@example.com", "")
	login, err := f.svc.Login(t.Context(), "alice@example.com", strongPassword)
	require.NoError(t, err)

	status, env := call(t, srv, http.MethodPost, "/api/auth/change-password", login.AccessToken, map[string]string{
		"oldPassword": "Wrong123!", "newPassword": "Newpass1!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Current password is incorrect", env.Error.Message)

	status, env = call(t, srv, http.MethodPost, "/api/auth/change-password", login.AccessToken, map[string]string{
		"oldPassword": strongPassword, "newPassword": "Newpass1!",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password changed successfully. Please login again.", env.Message)
}
