package cart

// Record keys in the persistent store. These are part of the on-disk/on-wire
// contract and must not change: existing saved carts rehydrate from them.
const (
	RecordItems  = "cart"
	RecordVendor = "kantinInfo"
)

// LineItem is one row in a cart: a menu item, the kantin it belongs to, and
// how many units the user wants. JSON field names mirror the persisted
// record format.
type LineItem struct {
	ID         uint    `json:"id"`
	KantinID   uint    `json:"warungId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	ImageURL   *string `json:"image_url,omitempty"`
	KantinName string  `json:"warungName,omitempty"`
}

// VendorDescriptor identifies the kantin a cart is scoped to.
type VendorDescriptor struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	ImageURL    *string `json:"image_url"`
}

// normalize returns a copy with empty-string image treated as absent. The
// other optional fields already default to empty strings in Go.
func (v VendorDescriptor) normalize() VendorDescriptor {
	out := v
	if out.ImageURL != nil && *out.ImageURL == "" {
		out.ImageURL = nil
	}
	return out
}
