package handlers

import (
	"context"
	"log"
	"net/url"

	"vbgateway/internal/engine"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
)

// EngineContract define the reconciliation surface a gateway instance exposes.
type EngineContract interface {
	ID() string
	OnNotify(ctx context.Context, fields url.Values) error
	OnReturn(ctx context.Context, ord *order.Order, fields url.Values) engine.Outcome
}

// PaymentLookupContract define order-scoped payment lookup responsibility.
type PaymentLookupContract interface {
	QueryByOrderID(ctx context.Context, orderID, gatewayID string) ([]*payment.Payment, error)
}

// Registry resolves which configured gateway instance a request belongs to.
// Shops usually run one instance; with several sharing the payments table the
// owner of an order is whichever instance already holds its payments.
type Registry struct {
	engines  []EngineContract
	payments PaymentLookupContract
}

func NewRegistry(payments PaymentLookupContract, engines ...EngineContract) *Registry {
	return &Registry{engines: engines, payments: payments}
}

func (r *Registry) ByID(id string) EngineContract {
	for _, e := range r.engines {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// Owner picks the instance that owns orderID's payments, falling back to the
// first registered instance when no payment exists yet.
func (r *Registry) Owner(ctx context.Context, orderID string) EngineContract {
	if len(r.engines) == 0 {
		return nil
	}
	if len(r.engines) == 1 || r.payments == nil {
		return r.engines[0]
	}
	for _, e := range r.engines {
		list, err := r.payments.QueryByOrderID(ctx, orderID, e.ID())
		if err != nil {
			log.Printf("layer=handler component=registry method=Owner order_id=%s gateway_id=%s err=%v", orderID, e.ID(), err)
			continue
		}
		if len(list) > 0 {
			return e
		}
	}
	return r.engines[0]
}
