package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/submission-service/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Authenticate)

	r.With(h.gate.Require(rbac.OpRead)).Get("/", h.List)
	r.With(h.gate.Require(rbac.OpRead)).Get("/{id}", h.Show)
	r.With(h.gate.Require(rbac.OpCreate)).Post("/", h.Create)
	r.With(h.gate.Require(rbac.OpUpdate)).Put("/{id}", h.Update)
	r.With(h.gate.Require(rbac.OpDelete)).Delete("/{id}", h.Delete)
}
