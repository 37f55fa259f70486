package customers

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

var errInvalidID = shared.NewError(shared.ErrValidation, "ID must be an integer")

type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	responder httpx.Responder
	validator *validator.Validate
}

func NewHandler(
	logger *slog.Logger,
	service *Service,
	gate rbac.Gate,
	responder httpx.Responder,
) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		responder: responder,
		validator: httpx.NewValidator(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", list)
}

// Legacy serves GET /getCustomers for older table widgets.
func (h *Handler) Legacy(w http.ResponseWriter, r *http.Request) {
	h.List(w, r)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.logger.Info("customer created", slog.Int64("id", c.ID))
	httpx.OK(w, http.StatusCreated, "Customer created successfully", c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Customer updated successfully", c)
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
	h.logger.Info("customer deleted", slog.Int64("id", id))
	httpx.OK(w, http.StatusOK, "Customer deleted successfully", nil)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.responder.Error(w, r, errInvalidID)
		return 0, false
	}
	return id, true
}
