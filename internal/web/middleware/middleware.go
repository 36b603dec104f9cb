package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/lifeboard/internal/middleware"
	"github.com/mcoot/lifeboard/internal/web/templates/pages"
)

// Logging logs page and action requests under the "web" component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "web")))
}

// Recovery answers a panicking page request with an HTML error page.
// HTMX requests get a bare 500 so the board is not replaced by a page.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "web")), func(w http.ResponseWriter, r *http.Request, err any) {
		if r.Header.Get("HX-Request") == "true" {
			middleware.PlainPanicHandler(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = pages.Error().Render(r.Context(), w)
	})
}
