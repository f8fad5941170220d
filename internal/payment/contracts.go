package payment

import "context"

// RepositoryContract define payment store responsibility.
type RepositoryContract interface {
	Create(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error
	// LoadUnchanged re-reads the persisted record, bypassing anything the
	// caller holds in memory.
	LoadUnchanged(ctx context.Context, paymentID string) (*Payment, error)
	QueryByRemoteIDPrefix(ctx context.Context, prefix string, gatewayIDs []string) ([]*Payment, error)
	QueryByOrderID(ctx context.Context, orderID, gatewayID string) ([]*Payment, error)
}
