package payment

import (
	"time"

	"vbgateway/internal/price"
)

type Status string

const (
	// StatusAuthorization: funds blocked on the card, waiting for capture or void.
	StatusAuthorization       Status = "authorization"
	StatusCompleted           Status = "completed"
	StatusRefunded            Status = "refunded"
	StatusAuthorizationVoided Status = "authorization_voided"
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusRefunded || s == StatusAuthorizationVoided
}

// Payment is one authorization lifecycle tied to exactly one order.
// RemoteID is the only handle that correlates later bank responses back to
// the record: "RRN|INT_REF" after authorization, "RRN|newIntRef|oldIntRef"
// after capture.
type Payment struct {
	ID             string       `gorm:"type:char(36);primaryKey"`
	OrderID        string       `gorm:"type:char(36);not null;index:ix_payments_order_id"`
	GatewayID      string       `gorm:"type:varchar(64);not null;index:ix_payments_gateway_id"`
	State          Status       `gorm:"type:varchar(32);not null"`
	Amount         price.Price  `gorm:"embedded;embeddedPrefix:amount_"`
	RemoteID       string       `gorm:"type:varchar(128);not null;index:ix_payments_remote_id"`
	RemoteState    string       `gorm:"type:varchar(16)"`
	RefundedAmount *price.Price `gorm:"embedded;embeddedPrefix:refunded_"`
	Test           bool         `gorm:"not null"`
	AuthorizedAt   time.Time    `gorm:"type:datetime(3);not null"`
	UpdatedAt      time.Time    `gorm:"type:datetime(3)"`
}

func (Payment) TableName() string { return "payments" }
