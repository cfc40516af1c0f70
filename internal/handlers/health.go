package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/models"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	backend HealthChecker
}

func NewHealthHandler(store Pinger, backend HealthChecker) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// Ready godoc
// @Summary     Readiness check
// @Description Checks the entity store and the AI/render backend
// @Tags        health
// @Produce     json
// @Success     200 {object} models.ReadinessResponse
// @Failure     503 {object} models.ReadinessResponse
// @Router      /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := models.ReadinessResponse{Status: "ok", Store: "ok", Backend: "ok"}
	if err := h.store.Ping(ctx); err != nil {
		resp.Status, resp.Store, resp.Error = "unavailable", "unavailable", err.Error()
	}
	if err := h.backend.Health(ctx); err != nil {
		resp.Status, resp.Backend = "unavailable", "unavailable"
		if resp.Error == "" {
			resp.Error = err.Error()
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
