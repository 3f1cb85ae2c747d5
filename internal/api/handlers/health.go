package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/grocer/pkg/database"
)

// HealthHandler reports service health. db is optional.
type HealthHandler struct {
	db     *database.DB
	source string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, source string) *HealthHandler {
	return &HealthHandler{db: db, source: source}
}

// Check returns 200 while the service can answer, 503 when its database is down
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":        "ok",
		"service":       "grocer-api",
		"signal_source": h.source,
	}

	if h.db == nil {
		respondJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := h.db.HealthCheck(ctx)
	body["database"] = status
	if !status.Healthy {
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
