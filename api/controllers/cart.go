package controllers

import (
	"context"
	"net/http"

	"github.com/webcraft-id/kantinku-backend/api/middleware"
	"github.com/webcraft-id/kantinku-backend/api/responses"
	"github.com/webcraft-id/kantinku-backend/api/validators"
	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/internal/kantins"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
)

type cartManager interface {
	ForUser(ctx context.Context, userID string) (*cart.Container, error)
}

// CartView is the cart state as the client renders it. The "cart" and
// "kantinInfo" keys mirror the persisted record names.
type CartView struct {
	Items      []cart.LineItem        `json:"cart"`
	Vendor     *cart.VendorDescriptor `json:"kantinInfo"`
	TotalPrice float64                `json:"total_price"`
	ItemCount  int                    `json:"item_count"`
}

type addCartItemRequest struct {
	ID         uint    `json:"id" validate:"required"`
	KantinID   uint    `json:"warungId" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	ImageURL   *string `json:"image_url,omitempty"`
	KantinName string  `json:"warungName,omitempty"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type switchVendorRequest struct {
	KantinID uint `json:"id" validate:"required"`
}

func cartView(c *cart.Container) CartView {
	total, _ := c.Total().Float64()
	return CartView{
		Items:      c.Items(),
		Vendor:     c.Vendor(),
		TotalPrice: total,
		ItemCount:  c.ItemCount(),
	}
}

func userContainer(ctx context.Context, manager cartManager) (*cart.Container, error) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return manager.ForUser(ctx, userID)
}

// CartGet returns the caller's current cart state.
func CartGet(manager cartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView(container))
	}
}

// CartAddItem merges one unit of the posted item into the cart. The cart
// must already be scoped to the item's kantin; cross-kantin adds are
// rejected so a stale menu page cannot mix vendors.
func CartAddItem(manager cartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if container.Vendor() == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no kantin selected"))
			return
		}
		if !container.IsCartFromVendor(body.KantinID) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item belongs to another kantin"))
			return
		}

		container.AddItem(cart.LineItem{
			ID:         body.ID,
			KantinID:   body.KantinID,
			Name:       body.Name,
			Price:      body.Price,
			ImageURL:   body.ImageURL,
			KantinName: body.KantinName,
		})

		responses.WriteSuccess(w, cartView(container))
	}
}

// CartUpdateItem sets the line's quantity; a value below one removes it.
func CartUpdateItem(manager cartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := parseUintParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		container.UpdateQuantity(itemID, *body.Quantity)
		responses.WriteSuccess(w, cartView(container))
	}
}

// CartRemoveItem deletes one line from the cart.
func CartRemoveItem(manager cartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := parseUintParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		container.RemoveItem(itemID)
		responses.WriteSuccess(w, cartView(container))
	}
}

// CartClear empties the items and keeps the kantin selection.
func CartClear(manager cartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		container.ClearCart()
		responses.WriteSuccess(w, cartView(container))
	}
}

// CartSwitchVendor points the cart at a kantin, discarding items from any
// previously selected one. The descriptor comes from the database, not the
// client, so the persisted vendor record always reflects a real kantin.
func CartSwitchVendor(manager cartManager, kantinSvc kantins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		container, err := userContainer(ctx, manager)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body switchVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := kantinSvc.GetKantin(ctx, body.KantinID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		container.SwitchVendor(detail.VendorDescriptor())
		responses.WriteSuccess(w, cartView(container))
	}
}
