package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is one dish a kantin sells. Price is IDR; the column is numeric
// so totals survive round-tripping through the database.
type MenuItem struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	KantinID    uint            `gorm:"column:kantin_id;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL    *string         `gorm:"column:image_url"`
	IsAvailable bool            `gorm:"column:is_available;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
