package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/noah-isme/submission-service/internal/shared"
)

// StatusFor maps domain error kinds to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrWeakPassword),
		errors.Is(err, shared.ErrInvalidRole),
		errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrAccountDisabled),
		errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Responder is the single boundary where errors become HTTP responses.
type Responder struct {
	Logger *slog.Logger
	// Debug adds the full error chain to responses; development only.
	Debug bool
}

// Error logs err and writes the matching failure envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if rs.Logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		rs.Logger.Log(r.Context(), level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	detail := &ErrorDetail{Message: shared.UserSafeMessage(err)}
	if rs.Debug {
		detail.Detail = err.Error()
	}
	body := Envelope{Success: false, Error: detail}

	var appErr *shared.Error
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body.Errors = appErr.Details
	}
	JSON(w, status, body)
}
