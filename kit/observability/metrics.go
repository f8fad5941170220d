package observability

import "sync/atomic"

type Metrics struct {
	PaymentsAuthorized    atomic.Int64
	PaymentsCaptured      atomic.Int64
	PaymentsRefunded      atomic.Int64
	PaymentsVoided        atomic.Int64
	NotificationsRejected atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) PaymentsAuthorizedAdd(n int64) {
	m.PaymentsAuthorized.Add(n)
}

func (m *Metrics) PaymentsCapturedAdd(n int64) {
	m.PaymentsCaptured.Add(n)
}

func (m *Metrics) PaymentsRefundedAdd(n int64) {
	m.PaymentsRefunded.Add(n)
}

func (m *Metrics) PaymentsVoidedAdd(n int64) {
	m.PaymentsVoided.Add(n)
}

func (m *Metrics) NotificationsRejectedAdd(n int64) {
	m.NotificationsRejected.Add(n)
}
