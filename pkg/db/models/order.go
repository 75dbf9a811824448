package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webcraft-id/kantinku-backend/pkg/enums"
)

// Order is a submitted cart: one kantin, one user, a price snapshot.
type Order struct {
	ID            uint                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	KantinID      uint                `gorm:"column:kantin_id;not null;index"`
	TotalPrice    decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one cart line at submission time. PriceAtPurchase is
// pinned so later menu edits do not rewrite order history.
type OrderItem struct {
	ID              uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID         uint            `gorm:"column:order_id;not null;index"`
	MenuItemID      uint            `gorm:"column:menu_item_id;not null"`
	MenuItem        *MenuItem       `gorm:"foreignKey:MenuItemID"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
