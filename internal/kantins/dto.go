package kantins

import (
	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
)

// KantinDTO is the list/detail shape for a kantin. Field names match the
// persisted vendor record so the client can feed a kantin straight into the
// cart's vendor slot.
type KantinDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	ImageURL    *string `json:"image_url"`
	IsOpen      bool    `json:"is_open"`
}

// MenuItemDTO is one dish on a kantin's menu. Price travels as a plain IDR
// number on the wire.
type MenuItemDTO struct {
	ID          uint    `json:"id"`
	KantinID    uint    `json:"warungId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsAvailable bool    `json:"is_available"`
}

// KantinDetailDTO bundles a kantin with its menu.
type KantinDetailDTO struct {
	KantinDTO
	MenuItems []MenuItemDTO `json:"menu_items"`
}

func fromModel(k *models.Kantin) KantinDTO {
	return KantinDTO{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		Location:    k.Location,
		ImageURL:    k.ImageURL,
		IsOpen:      k.IsOpen,
	}
}

func menuItemFromModel(m models.MenuItem) MenuItemDTO {
	price, _ := m.Price.Float64()
	return MenuItemDTO{
		ID:          m.ID,
		KantinID:    m.KantinID,
		Name:        m.Name,
		Description: m.Description,
		Price:       price,
		ImageURL:    m.ImageURL,
		IsAvailable: m.IsAvailable,
	}
}

// VendorDescriptor converts the kantin into the cart's vendor shape.
func (d KantinDTO) VendorDescriptor() cart.VendorDescriptor {
	return cart.VendorDescriptor{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		ImageURL:    d.ImageURL,
	}
}
