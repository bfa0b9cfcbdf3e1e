package api

import (
	"net/http"

	"github.com/converselab/converse-api/internal/generation"
)

// HealthHandler reports service and model-backend liveness.
type HealthHandler struct {
	healthChecker generation.HealthChecker
}

// NewHealthHandler creates a new HealthHandler with the given dependencies.
func NewHealthHandler(healthChecker generation.HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthChecker: healthChecker,
	}
}

// HealthResponse is the payload for the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	ModelAvailable bool   `json:"model_available"`
}

// Check handles GET /health. The endpoint itself always returns 200; the
// model backend's reachability is reported in the body.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:         "ok",
		ModelAvailable: h.healthChecker.Ping(r.Context()),
	})
}
