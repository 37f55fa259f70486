package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/submission-service/internal/auth"
	"github.com/noah-isme/submission-service/internal/customers"
	"github.com/noah-isme/submission-service/internal/observability"
	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/rbac"
	"github.com/noah-isme/submission-service/internal/submissions"
	"github.com/noah-isme/submission-service/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Gate              rbac.Gate
	AuthHandler       *auth.Handler
	CustomersHandler  *customers.Handler
	SubmissionHandler *submissions.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "System is healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.CustomersHandler != nil {
			r.Route("/customers", params.CustomersHandler.MountRoutes)
		}
		if params.SubmissionHandler != nil {
			r.Route("/submissions", params.SubmissionHandler.MountRoutes)
		}
	})

	if params.CustomersHandler != nil {
		r.With(params.Gate.Authenticate, params.Gate.Require(rbac.OpRead)).
			Get("/getCustomers", params.CustomersHandler.Legacy)
	}
	// Operational endpoints are admin-only.
	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Authenticate, params.Gate.Authorize(rbac.Admin))
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
		}
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}
	httpx.Fail(w, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}
