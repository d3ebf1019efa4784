package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sgci.io/catalog/internal/api/middleware"
)

// Pinger checks that the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// readinessTimeout bounds the store ping of a readiness probe.
const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store      Pinger
	instanceID string
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(store Pinger, instanceID string) *HealthHandler {
	return &HealthHandler{
		store:      store,
		instanceID: instanceID,
	}
}

// LivenessResponse represents the liveness probe response.
type LivenessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
}

// ReadinessResponse represents the readiness probe response.
type ReadinessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
	Store      string `json:"store"`
}

// Liveness handles GET /health/live. It answers 200 while the process serves
// HTTP.
func (h *HealthHandler) Liveness(c *gin.Context) {
	respondSuccess(c, http.StatusOK, LivenessResponse{
		Status:     "ok",
		InstanceID: h.instanceID,
	})
}

// Readiness handles GET /health/ready. It answers 503 when the document
// store does not respond to a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		middleware.GetLogger(c).Warn("Readiness check failed", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "unhealthy", "Resource store unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, ReadinessResponse{
		Status:     "ready",
		InstanceID: h.instanceID,
		Store:      "connected",
	})
}
