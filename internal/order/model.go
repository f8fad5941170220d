package order

import (
	"time"

	"vbgateway/internal/price"
)

// Order is owned by the storefront; the engine only reads it.
type Order struct {
	ID        string      `gorm:"type:char(36);primaryKey"`
	Total     price.Price `gorm:"embedded;embeddedPrefix:total_"`
	Email     string      `gorm:"type:varchar(128)"`
	CreatedAt time.Time   `gorm:"type:datetime(3)"`
}

func (Order) TableName() string { return "orders" }
