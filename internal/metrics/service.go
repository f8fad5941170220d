package metrics

import "vbgateway/kit/observability"

type Service struct {
	m *observability.Metrics
}

func NewService(m *observability.Metrics) *Service {
	return &Service{m: m}
}

func (s *Service) Snapshot() map[string]int64 {
	if s.m == nil {
		return map[string]int64{}
	}
	return map[string]int64{
		"payments_authorized":    s.m.PaymentsAuthorized.Load(),
		"payments_captured":      s.m.PaymentsCaptured.Load(),
		"payments_refunded":      s.m.PaymentsRefunded.Load(),
		"payments_voided":        s.m.PaymentsVoided.Load(),
		"notifications_rejected": s.m.NotificationsRejected.Load(),
	}
}
