package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/rbac"
	"github.com/noah-isme/submission-service/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	responder httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Gate, responder httpx.Responder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		responder: responder,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh-token", h.handleRefresh)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Authenticate)
		r.Get("/profile", h.handleProfile)
		r.Post("/change-password", h.handleChangePassword)
		r.Post("/logout-all", h.handleLogoutAll)
		r.With(h.gate.Authorize(rbac.Admin)).Get("/roles", h.handleRoles)
	})
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager user viewer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.logger.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", user.RoleName))
	httpx.OK(w, http.StatusCreated, "User registered successfully", user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Login successful", result)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Token refreshed successfully", result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Fail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		h.responder.Error(w, r, shared.NewError(shared.ErrUnauthenticated, "User not authenticated"))
		return
	}
	user, err := h.service.Profile(r.Context(), identity.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", user)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		h.responder.Error(w, r, shared.NewError(shared.ErrUnauthenticated, "User not authenticated"))
		return
	}
	var req changePasswordRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.logger.Info("password changed", slog.Int64("user_id", identity.ID))
	httpx.OK(w, http.StatusOK, "Password changed successfully. Please login again.", nil)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		h.responder.Error(w, r, shared.NewError(shared.ErrUnauthenticated, "User not authenticated"))
		return
	}
	if err := h.service.LogoutAll(r.Context(), identity.ID); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Logged out from all devices successfully", nil)
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Roles(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", list)
}
