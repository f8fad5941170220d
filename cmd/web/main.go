package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vbgateway/cmd/web/handlers"
	"vbgateway/internal/audit"
	"vbgateway/internal/engine"
	"vbgateway/internal/events"
	"vbgateway/internal/gateway"
	"vbgateway/internal/health"
	"vbgateway/internal/metrics"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
	"vbgateway/internal/price"
	"vbgateway/kit/broker"
	"vbgateway/kit/db"
	"vbgateway/kit/locker"
	"vbgateway/kit/observability"
)

func main() {
	_ = godotenv.Load()
	logger := observability.NewLogger()
	metricsKit := observability.NewMetrics()
	bus := broker.New()

	cfg := gateway.DevConfig()
	if path := os.Getenv("GATEWAY_CONFIG"); path != "" {
		loaded, err := gateway.LoadConfig(path)
		if err != nil {
			logger.Error("gateway config error", "path", path, "error", err.Error())
			return
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("gateway config invalid", "error", err.Error())
		return
	}

	var (
		paymentRepo payment.RepositoryContract
		orderRepo   engine.OrderStoreContract
		auditSvc    *audit.Service
		dbCheck     health.CheckFunc
	)
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		g, err := db.Open(dsn)
		if err != nil {
			logger.Error("db init error", "error", err.Error())
			return
		}
		if err := g.AutoMigrate(&order.Order{}, &payment.Payment{}, &audit.GatewayEvent{}); err != nil {
			logger.Error("db migrate error", "error", err.Error())
			return
		}
		paymentRepo = payment.NewGormRepository(g)
		orderRepo = order.NewGormRepository(g)
		auditSvc = audit.NewService(g)
		sqlDB, err := g.DB()
		if err != nil {
			logger.Error("db init error", "error", err.Error())
			return
		}
		dbCheck = func(ctx context.Context) error { return sqlDB.PingContext(ctx) }
	} else {
		logger.Info("running without MYSQL_DSN, state is in-memory")
		paymentRepo = payment.NewInMemoryRepository()
		orders := order.NewInMemoryRepository()
		orders.Put(&order.Order{
			ID:    "test-order",
			Total: price.New("100.00", cfg.DefaultCurrency),
			Email: "customer@example.com",
		})
		orderRepo = orders
		auditSvc = audit.NewService(nil)
		dbCheck = func(ctx context.Context) error { return nil }
	}

	fakeClient := gateway.NewFakeClient(cfg)
	client := gateway.NewCircuitBreakerClient(fakeClient, gateway.CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Second,
	})

	eng := engine.New(engine.Settings{
		GatewayID:       envStr("GATEWAY_ID", "vb_main"),
		Intent:          envStr("INTENT", engine.IntentCapture),
		UseIPN:          envInt("USE_IPN", engine.UseIPNBoth),
		Debug:           envBool("DEBUG"),
		Test:            cfg.Mode == gateway.ModeTest,
		CheckoutBaseURL: envStr("CHECKOUT_BASE_URL", "http://localhost:8080/checkout"),
	}, client, paymentRepo, orderRepo, locker.NewMutexLocker(), bus)

	healthSvc := health.NewService(2*time.Second, map[string]health.CheckFunc{
		"db": dbCheck,
		"gateway": func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()
			_, err := client.RequestCompletion(callCtx, "__healthcheck__", price.New("0.01", cfg.DefaultCurrency), "HEALTH", "HEALTH")
			return err
		},
	})

	metricsHandler := handlers.NewMetricsEvent(metricsKit)
	bus.Subscribe((events.PaymentAuthorized{}).Name(), metricsHandler.HandleAny)
	bus.Subscribe((events.PaymentCaptured{}).Name(), metricsHandler.HandleAny)
	bus.Subscribe((events.PaymentRefunded{}).Name(), metricsHandler.HandleAny)
	bus.Subscribe((events.PaymentVoided{}).Name(), metricsHandler.HandleAny)
	bus.Subscribe((events.NotificationRejected{}).Name(), metricsHandler.HandleAny)

	go func() {
		t := time.NewTicker(10 * time.Second)
		defer t.Stop()
		for range t.C {
			logger.Info(
				"metrics snapshot",
				"payments_authorized", metricsKit.PaymentsAuthorized.Load(),
				"payments_captured", metricsKit.PaymentsCaptured.Load(),
				"payments_refunded", metricsKit.PaymentsRefunded.Load(),
				"payments_voided", metricsKit.PaymentsVoided.Load(),
				"notifications_rejected", metricsKit.NotificationsRejected.Load(),
			)
		}
	}()

	registry := handlers.NewRegistry(paymentRepo, eng)
	notifyH := handlers.NewNotify(registry, auditSvc)
	checkoutH := handlers.NewCheckout(registry, orderRepo, client, auditSvc,
		envStr("CHECKOUT_BASE_URL", "http://localhost:8080/checkout"),
		envStr("PUBLIC_BASE_URL", "http://localhost:8080"))
	healthH := handlers.NewHealth(healthSvc)
	metricsH := handlers.NewMetrics(metrics.NewService(metricsKit))

	if !envBool("DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/payment/notify/:gateway", notifyH.Handler)
	router.POST("/payment/return/:gateway/:order", checkoutH.Return)
	router.GET("/checkout/:order/pay/:gateway", checkoutH.Pay)
	router.GET("/healthz", healthH.Handler)
	router.GET("/metrics", metricsH.Handler)

	srv := &http.Server{
		Addr:              envStr("ADDR", ":8080"),
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}

	logger.Info("web server started", "addr", srv.Addr, "gateway_url", cfg.GatewayURL(), "mode", cfg.Mode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("web server error", "error", err.Error())
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true"
}
