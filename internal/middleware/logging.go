// Package middleware holds the HTTP middleware shared by the API and the web UI.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// statusWriter records what a handler wrote
type statusWriter struct {
	http.ResponseWriter
	status  int
	size    int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Flush passes through so event streams reach the client
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func wrap(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

// RouteAttrs returns the game and player a matched route names, for log lines
func RouteAttrs(r *http.Request) []slog.Attr {
	vars := mux.Vars(r)
	attrs := make([]slog.Attr, 0, 2)
	if id := vars["id"]; id != "" {
		attrs = append(attrs, slog.String("game_id", id))
	}
	if player := vars["player"]; player != "" {
		attrs = append(attrs, slog.String("player_id", player))
	}
	return attrs
}

// Logging logs one line per request. Event streams are logged when they close.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)

			next.ServeHTTP(sw, r)

			msg := "http request"
			level := slog.LevelInfo
			if strings.HasPrefix(sw.Header().Get("Content-Type"), "text/event-stream") {
				msg = "event stream closed"
				level = slog.LevelDebug
			}
			if sw.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			attrs := append([]slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int("size", sw.size),
				slog.Duration("duration", time.Since(start)),
			}, RouteAttrs(r)...)
			logger.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}
