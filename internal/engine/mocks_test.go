package engine

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"vbgateway/internal/gateway"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
	"vbgateway/internal/price"
)

type GatewayMock struct {
	mock.Mock
	GatewayContract
}

func (m *GatewayMock) RequestCompletion(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	args := m.Called(ctx, orderID, amount, rrn, intRef)
	if fields, ok := args.Get(0).(url.Values); ok {
		return fields, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GatewayMock) RequestReversal(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	args := m.Called(ctx, orderID, amount, rrn, intRef)
	if fields, ok := args.Get(0).(url.Values); ok {
		return fields, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GatewayMock) ParseResponse(fields url.Values) (*gateway.Message, error) {
	args := m.Called(fields)
	if msg, ok := args.Get(0).(*gateway.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

type PaymentStoreMock struct {
	mock.Mock
	PaymentStoreContract
}

func (m *PaymentStoreMock) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PaymentStoreMock) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PaymentStoreMock) LoadUnchanged(ctx context.Context, paymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentStoreMock) QueryByRemoteIDPrefix(ctx context.Context, prefix string, gatewayIDs []string) ([]*payment.Payment, error) {
	args := m.Called(ctx, prefix, gatewayIDs)
	if list, ok := args.Get(0).([]*payment.Payment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type OrderStoreMock struct {
	mock.Mock
	OrderStoreContract
}

func (m *OrderStoreMock) Load(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
