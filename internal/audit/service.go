package audit

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ChannelNotify = "notify"
	ChannelReturn = "return"
)

// GatewayEvent keeps the raw field set of every inbound bank payload. Audit
// only: reconciliation never reads this table.
type GatewayEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	GatewayID   string         `gorm:"type:varchar(64);not null;index:ix_gateway_events_gateway_id"`
	Channel     string         `gorm:"type:varchar(16);not null"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`
	ReceivedAt  time.Time      `gorm:"type:datetime(3);not null"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }

type Service struct {
	db *gorm.DB
}

func NewService(g *gorm.DB) *Service {
	return &Service{db: g}
}

// Record persists one inbound payload. Failures are logged and dropped: the
// audit trail must never affect reconciliation.
func (s *Service) Record(ctx context.Context, gatewayID, channel string, fields url.Values) {
	if s == nil || s.db == nil {
		return
	}
	flat := make(map[string]string, len(fields))
	for k := range fields {
		flat[k] = fields.Get(k)
	}
	payload, err := json.Marshal(flat)
	if err != nil {
		log.Printf("layer=service component=audit method=Record gateway_id=%s channel=%s err=%v", gatewayID, channel, err)
		return
	}
	ev := GatewayEvent{
		ID:          uuid.NewString(),
		GatewayID:   gatewayID,
		Channel:     channel,
		PayloadJSON: datatypes.JSON(payload),
		ReceivedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		log.Printf("layer=service component=audit method=Record gateway_id=%s channel=%s err=%v", gatewayID, channel, err)
	}
}
