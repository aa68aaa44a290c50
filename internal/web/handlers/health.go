package handlers

import (
	"net/http"
	"time"

	"github.com/facegate/facegate/internal/storage"
)

// HealthHandler reports service liveness and the active storage backend.
type HealthHandler struct {
	store storage.Store
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles the health check endpoint.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"storage":   h.store.Mode(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
