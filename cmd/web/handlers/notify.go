package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"vbgateway/internal/audit"
)

// AuditContract define raw gateway traffic recording responsibility.
type AuditContract interface {
	Record(ctx context.Context, gatewayID, channel string, fields url.Values)
}

type Notify struct {
	registry *Registry
	audit    AuditContract
}

func NewNotify(registry *Registry, auditSvc AuditContract) *Notify {
	return &Notify{registry: registry, audit: auditSvc}
}

// Handler accepts POST /payment/notify/:gateway. The bank treats anything but
// an empty 200 as a delivery failure and retries, so every outcome, including
// an unknown gateway id, answers the same way.
func (h *Notify) Handler(c *gin.Context) {
	gatewayID := c.Param("gateway")
	if err := c.Request.ParseForm(); err != nil {
		log.Printf("layer=handler component=notify method=Handler gateway_id=%s err=%v", gatewayID, err)
		c.String(http.StatusOK, "")
		return
	}
	fields := url.Values(c.Request.PostForm)

	if h.audit != nil {
		h.audit.Record(c.Request.Context(), gatewayID, audit.ChannelNotify, fields)
	}

	eng := h.registry.ByID(gatewayID)
	if eng == nil {
		log.Printf("layer=handler component=notify method=Handler gateway_id=%s err=unknown_gateway", gatewayID)
		c.String(http.StatusOK, "")
		return
	}
	if err := eng.OnNotify(c.Request.Context(), fields); err != nil {
		log.Printf("layer=handler component=notify method=Handler gateway_id=%s err=%v", gatewayID, err)
	}
	c.String(http.StatusOK, "")
}
