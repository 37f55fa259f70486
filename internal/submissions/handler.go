package submissions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/rbac"
	"github.com/noah-isme/submission-service/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	responder httpx.Responder
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, gate rbac.Gate, responder httpx.Responder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		responder: responder,
		validator: httpx.NewValidator(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Authenticate)

	r.With(h.gate.Require(rbac.OpRead)).Get("/", h.List)
	r.With(h.gate.Require(rbac.OpRead)).Get("/{id}", h.Show)
	r.With(h.gate.Require(rbac.OpCreate)).Post("/", h.Create)
	r.With(h.gate.Require(rbac.OpUpdate)).Put("/{id}", h.Update)
	r.With(h.gate.Require(rbac.OpUpdate)).Patch("/{id}/status", h.UpdateStatus)
	r.With(h.gate.Require(rbac.OpDelete)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", list)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", sub)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubmissionRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	sub, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Submission created successfully", sub)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateSubmissionRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	sub, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Submission updated successfully", sub)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	sub, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.logger.Info("submission status changed", slog.Int64("id", id), slog.String("status", string(sub.Status)))
	httpx.OK(w, http.StatusOK, "Submission status updated successfully", sub)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Submission deleted successfully", nil)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.responder.Error(w, r, shared.NewError(shared.ErrValidation, "ID must be an integer"))
		return 0, false
	}
	return id, true
}
