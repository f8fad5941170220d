package events

import "time"

type PaymentAuthorized struct {
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	GatewayID string    `json:"gateway_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	RemoteID  string    `json:"remote_id"`
	At        time.Time `json:"at"`
}

func (PaymentAuthorized) Name() string { return "payment.authorized" }

func (e PaymentAuthorized) PartitionKey() string { return e.PaymentID }

type PaymentCaptured struct {
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	RemoteID  string    `json:"remote_id"`
	At        time.Time `json:"at"`
}

func (PaymentCaptured) Name() string { return "payment.captured" }

func (e PaymentCaptured) PartitionKey() string { return e.PaymentID }

type PaymentRefunded struct {
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

func (PaymentRefunded) Name() string { return "payment.refunded" }

func (e PaymentRefunded) PartitionKey() string { return e.PaymentID }

type PaymentVoided struct {
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	At        time.Time `json:"at"`
}

func (PaymentVoided) Name() string { return "payment.voided" }

func (e PaymentVoided) PartitionKey() string { return e.PaymentID }

type NotificationRejected struct {
	GatewayID string    `json:"gateway_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (NotificationRejected) Name() string { return "notification.rejected" }

func (e NotificationRejected) PartitionKey() string { return e.GatewayID }
