package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vbgateway/internal/metrics"
)

type Metrics struct {
	svc *metrics.Service
}

func NewMetrics(svc *metrics.Service) *Metrics {
	return &Metrics{svc: svc}
}

func (h *Metrics) Handler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Snapshot())
}
