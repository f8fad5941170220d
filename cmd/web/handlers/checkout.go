package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"vbgateway/internal/audit"
	"vbgateway/internal/gateway"
	"vbgateway/internal/order"
	"vbgateway/kit/db"
)

// OrderStoreContract define order lookup responsibility.
type OrderStoreContract interface {
	Load(ctx context.Context, orderID string) (*order.Order, error)
}

// AuthorizerContract define the bank hand-off responsibility.
type AuthorizerContract interface {
	RequestAuthorization(ctx context.Context, req gateway.AuthorizationRequest) (*gateway.RedirectForm, error)
}

type Checkout struct {
	registry   *Registry
	orders     OrderStoreContract
	authorizer AuthorizerContract
	audit      AuditContract

	// checkoutBaseURL hosts the shop's checkout pages; publicBaseURL is this
	// service's externally reachable base, used to build BACKREF.
	checkoutBaseURL string
	publicBaseURL   string
}

func NewCheckout(registry *Registry, orders OrderStoreContract, authorizer AuthorizerContract, auditSvc AuditContract, checkoutBaseURL, publicBaseURL string) *Checkout {
	return &Checkout{
		registry:        registry,
		orders:          orders,
		authorizer:      authorizer,
		audit:           auditSvc,
		checkoutBaseURL: checkoutBaseURL,
		publicBaseURL:   publicBaseURL,
	}
}

var payFormTmpl = template.Must(template.New("payform").Parse(`<!DOCTYPE html>
<html>
<head><title>Redirecting to the bank</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.URL}}">
{{- range $name, $values := .Fields}}
<input type="hidden" name="{{$name}}" value="{{index $values 0}}">
{{- end}}
<noscript><button type="submit">Continue to the bank</button></noscript>
</form>
</body>
</html>
`))

// Pay handles GET /checkout/:order/pay/:gateway: it renders the
// auto-submitting form that sends the cardholder to the bank.
func (h *Checkout) Pay(c *gin.Context) {
	orderID := c.Param("order")
	gatewayID := c.Param("gateway")

	ord, err := h.orders.Load(c.Request.Context(), orderID)
	if err != nil {
		log.Printf("layer=handler component=checkout method=Pay order_id=%s err=%v", orderID, err)
		if db.IsNotFound(err) {
			c.String(http.StatusNotFound, "unknown order")
			return
		}
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	form, err := h.authorizer.RequestAuthorization(c.Request.Context(), gateway.AuthorizationRequest{
		OrderID:     ord.ID,
		Amount:      ord.Total,
		ReturnURL:   h.publicBaseURL + "/payment/return/" + gatewayID + "/" + ord.ID,
		Description: "Order " + ord.ID,
		Email:       ord.Email,
		Language:    "en",
	})
	if err != nil {
		log.Printf("layer=handler component=checkout method=Pay order_id=%s err=%v", orderID, err)
		c.Redirect(http.StatusFound, h.errorURL(orderID))
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := payFormTmpl.Execute(c.Writer, form); err != nil {
		log.Printf("layer=handler component=checkout method=Pay order_id=%s err=%v", orderID, err)
	}
}

// Return handles POST /payment/return/:gateway/:order, the cardholder coming
// back from the bank. The engine decides whether checkout continues or the
// customer is sent back to fix the payment.
func (h *Checkout) Return(c *gin.Context) {
	orderID := c.Param("order")
	gatewayID := c.Param("gateway")

	if err := c.Request.ParseForm(); err != nil {
		log.Printf("layer=handler component=checkout method=Return order_id=%s err=%v", orderID, err)
		c.Redirect(http.StatusFound, h.errorURL(orderID))
		return
	}
	fields := url.Values(c.Request.PostForm)

	if h.audit != nil {
		h.audit.Record(c.Request.Context(), gatewayID, audit.ChannelReturn, fields)
	}

	ord, err := h.orders.Load(c.Request.Context(), orderID)
	if err != nil {
		log.Printf("layer=handler component=checkout method=Return order_id=%s err=%v", orderID, err)
		c.Redirect(http.StatusFound, h.errorURL(orderID))
		return
	}

	eng := h.registry.ByID(gatewayID)
	if eng == nil {
		eng = h.registry.Owner(c.Request.Context(), orderID)
	}
	if eng == nil {
		log.Printf("layer=handler component=checkout method=Return order_id=%s gateway_id=%s err=unknown_gateway", orderID, gatewayID)
		c.Redirect(http.StatusFound, h.errorURL(orderID))
		return
	}

	out := eng.OnReturn(c.Request.Context(), ord, fields)
	if out.Redirects() {
		c.Redirect(http.StatusFound, out.RedirectURL())
		return
	}
	c.Redirect(http.StatusFound, h.checkoutBaseURL+"/"+orderID+"/complete")
}

func (h *Checkout) errorURL(orderID string) string {
	return h.checkoutBaseURL + "/" + orderID + "/order_information"
}
