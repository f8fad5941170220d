package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"vbgateway/internal/events"
	"vbgateway/internal/health"
	"vbgateway/internal/metrics"
	"vbgateway/kit/broker"
	"vbgateway/kit/observability"
)

func TestMetricsEvent_HandleAny(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := observability.NewMetrics()
	h := NewMetricsEvent(m)

	bus := broker.New()
	for _, name := range []string{"payment.authorized", "payment.captured", "payment.refunded", "payment.voided", "notification.rejected"} {
		bus.Subscribe(name, h.HandleAny)
	}

	bus.Publish(ctx, events.PaymentAuthorized{PaymentID: "p1"})
	bus.Publish(ctx, events.PaymentCaptured{PaymentID: "p1"})
	bus.Publish(ctx, events.PaymentRefunded{PaymentID: "p1"})
	bus.Publish(ctx, events.PaymentVoided{PaymentID: "p2"})
	bus.Publish(ctx, events.NotificationRejected{GatewayID: "vb_main"})
	bus.Publish(ctx, events.PaymentAuthorized{PaymentID: "p2"})

	require.Equal(t, int64(2), m.PaymentsAuthorized.Load())
	require.Equal(t, int64(1), m.PaymentsCaptured.Load())
	require.Equal(t, int64(1), m.PaymentsRefunded.Load())
	require.Equal(t, int64(1), m.PaymentsVoided.Load())
	require.Equal(t, int64(1), m.NotificationsRejected.Load())
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()
	m := observability.NewMetrics()
	m.PaymentsAuthorizedAdd(3)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", NewMetrics(metrics.NewService(m)).Handler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var snap map[string]int64
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &snap))
	require.Equal(t, int64(3), snap["payments_authorized"])
}

func TestHealth_Handler(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	t.Run("ok", func(t *testing.T) {
		svc := health.NewService(0, map[string]health.CheckFunc{
			"gateway": func(ctx context.Context) error { return nil },
		})
		router := gin.New()
		router.GET("/healthz", NewHealth(svc).Handler)

		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("down", func(t *testing.T) {
		svc := health.NewService(0, map[string]health.CheckFunc{
			"gateway": func(ctx context.Context) error { return context.DeadlineExceeded },
		})
		router := gin.New()
		router.GET("/healthz", NewHealth(svc).Handler)

		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, res.Code)
	})
}
