package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/lifeboard/internal/api/apierr"
)

// fail writes err as an API error body. Failures the client only sees as a
// generic 5xx are logged with the game they concern.
func (h *GameHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := apierr.StatusOf(err); status >= http.StatusInternalServerError {
		h.logger.Warn("request failed",
			slog.String("game_id", string(gameIDFromRequest(r))),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}

func invalidRequest(message string) error {
	return apierr.NewInvalidRequestError(message)
}
