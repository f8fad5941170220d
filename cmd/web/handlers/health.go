package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vbgateway/internal/health"
)

// HealthContract define readiness checking responsibility.
type HealthContract interface {
	Check(ctx context.Context) health.Result
}

type Health struct {
	svc HealthContract
}

func NewHealth(svc HealthContract) *Health {
	return &Health{svc: svc}
}

func (h *Health) Handler(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	res := h.svc.Check(c.Request.Context())
	if !res.OK {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "checks": res.Checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": res.Checks})
}
