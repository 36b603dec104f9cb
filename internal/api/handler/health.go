package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/lifeboard/internal/api/apierr"
	"github.com/mcoot/lifeboard/internal/api/response"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports server and store health
type HealthHandler struct {
	pinger      Pinger
	storageType string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pinger Pinger, storageType string) *HealthHandler {
	return &HealthHandler{pinger: pinger, storageType: storageType}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			apierr.WriteError(w, err)
			return
		}
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: h.storageType})
}
