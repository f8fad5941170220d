package engine

import (
	"context"
	"net/url"
	"time"

	"vbgateway/internal/gateway"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
	"vbgateway/internal/price"
	"vbgateway/kit/broker"
)

// PaymentStoreContract define payment persistence responsibility.
type PaymentStoreContract interface {
	Create(ctx context.Context, p *payment.Payment) error
	Save(ctx context.Context, p *payment.Payment) error
	LoadUnchanged(ctx context.Context, paymentID string) (*payment.Payment, error)
	QueryByRemoteIDPrefix(ctx context.Context, prefix string, gatewayIDs []string) ([]*payment.Payment, error)
}

// OrderStoreContract define order lookup responsibility.
type OrderStoreContract interface {
	Load(ctx context.Context, orderID string) (*order.Order, error)
}

// GatewayContract define the bank round-trips the engine drives.
type GatewayContract interface {
	RequestCompletion(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error)
	RequestReversal(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error)
	ParseResponse(fields url.Values) (*gateway.Message, error)
}

// LockerContract define named mutual exclusion responsibility.
type LockerContract interface {
	MayBeAvailable(name string) bool
	Wait(name string, timeout time.Duration) bool
	Acquire(name string) bool
	Release(name string)
}

// PublisherContract define publish responsibility (broker).
type PublisherContract interface {
	Publish(ctx context.Context, evt broker.Event) []error
}
