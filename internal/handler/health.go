package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/matchboard/internal/repository"
)

// healthTimeout bounds one database ping.
const healthTimeout = 2 * time.Second

// HealthHandler reports whether the database answers.
type HealthHandler struct {
	db     repository.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. Each check pings db with a
// short timeout so a hung pool cannot stall the probe.
func NewHealthHandler(db repository.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth answers 200 {"status":"healthy"} or 503 {"status":"unavailable"}.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
