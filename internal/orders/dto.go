package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
	"github.com/webcraft-id/kantinku-backend/pkg/enums"
)

// SubmitOrderItem is one line of a submitted order payload.
type SubmitOrderItem struct {
	MenuItemID      uint    `json:"menu_item_id" validate:"required"`
	Quantity        int     `json:"quantity" validate:"required,min=1"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// SubmitOrderRequest mirrors the order submission payload the client sends.
// The server cart stays authoritative; the payload is checked against it so
// a stale client cannot submit a cart it no longer holds. Prices and total
// are informational, the server recomputes both.
type SubmitOrderRequest struct {
	UserID        string            `json:"user_id" validate:"required,uuid"`
	KantinID      uint              `json:"warung_id" validate:"required"`
	TotalPrice    float64           `json:"total_price"`
	PaymentStatus string            `json:"payment_status"`
	OrderItems    []SubmitOrderItem `json:"order_items" validate:"required,min=1,dive"`
}

// OrderItemDTO is one snapshotted line of an order.
type OrderItemDTO struct {
	MenuItemID      uint    `json:"menu_item_id"`
	Name            string  `json:"name,omitempty"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// OrderDTO is the transport shape of a submitted order.
type OrderDTO struct {
	ID            uint                `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	KantinID      uint                `json:"warung_id"`
	TotalPrice    float64             `json:"total_price"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Items         []OrderItemDTO      `json:"order_items"`
	CreatedAt     time.Time           `json:"created_at"`
}

func fromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	total, _ := o.TotalPrice.Float64()
	dto := &OrderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		KantinID:      o.KantinID,
		TotalPrice:    total,
		PaymentStatus: o.PaymentStatus,
		Items:         make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		price, _ := item.PriceAtPurchase.Float64()
		line := OrderItemDTO{
			MenuItemID:      item.MenuItemID,
			Quantity:        item.Quantity,
			PriceAtPurchase: price,
		}
		if item.MenuItem != nil {
			line.Name = item.MenuItem.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
