package handlers

import (
	"context"

	"vbgateway/internal/events"
	"vbgateway/kit/broker"
)

// MetricsContract define the counters fed from domain events.
type MetricsContract interface {
	PaymentsAuthorizedAdd(n int64)
	PaymentsCapturedAdd(n int64)
	PaymentsRefundedAdd(n int64)
	PaymentsVoidedAdd(n int64)
	NotificationsRejectedAdd(n int64)
}

type MetricsEvent struct {
	m MetricsContract
}

func NewMetricsEvent(m MetricsContract) *MetricsEvent {
	return &MetricsEvent{m: m}
}

func (h *MetricsEvent) HandleAny(ctx context.Context, evt broker.Event) error {
	if h.m == nil {
		return nil
	}

	switch evt.(type) {
	case events.PaymentAuthorized:
		h.m.PaymentsAuthorizedAdd(1)
	case events.PaymentCaptured:
		h.m.PaymentsCapturedAdd(1)
	case events.PaymentRefunded:
		h.m.PaymentsRefundedAdd(1)
	case events.PaymentVoided:
		h.m.PaymentsVoidedAdd(1)
	case events.NotificationRejected:
		h.m.NotificationsRejectedAdd(1)
	}
	return nil
}
