package handler

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	natsclient "github.com/capitalize-ai/investor-finder/internal/nats"
	"github.com/capitalize-ai/investor-finder/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db         *gorm.DB
	natsClient *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient is nil when event
// forwarding is disabled.
func NewHealthHandler(db *gorm.DB, natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		db:         db,
		natsClient: natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := store.Ping(ctx, h.db); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
