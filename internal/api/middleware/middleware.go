// Package middleware wraps the shared HTTP middleware with API error responses.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/lifeboard/internal/api/apierr"
	"github.com/mcoot/lifeboard/internal/middleware"
)

// Logging logs API requests under the "api" component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// Recovery answers a panicking API request with an INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
