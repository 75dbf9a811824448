package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
	"github.com/webcraft-id/kantinku-backend/pkg/enums"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
)

// Service defines the behavior needed by the orders controller.
type Service interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID, req *SubmitOrderRequest) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetOrder(ctx context.Context, id uint, userID uuid.UUID) (*OrderDTO, error)
}

// OrderRepository is the persistence surface the service depends on.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	FindByIDAndUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccessor interface {
	ForUser(ctx context.Context, userID string) (*cart.Container, error)
	FlushUser(ctx context.Context, userID string) error
}

type menuLoader interface {
	FindMenuItems(ctx context.Context, kantinID uint, itemIDs []uint) ([]models.MenuItem, error)
}

type service struct {
	repo  OrderRepository
	tx    txRunner
	carts cartAccessor
	menus menuLoader
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	OrderRepo   OrderRepository
	Tx          txRunner
	CartManager cartAccessor
	MenuLoader  menuLoader
	Logger      *logger.Logger
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.CartManager == nil {
		return nil, fmt.Errorf("cart manager is required")
	}
	if params.MenuLoader == nil {
		return nil, fmt.Errorf("menu loader is required")
	}
	return &service{
		repo:  params.OrderRepo,
		tx:    params.Tx,
		carts: params.CartManager,
		menus: params.MenuLoader,
		logg:  params.Logger,
	}, nil
}

// CreateFromCart submits the user's current cart as an order. A non-nil req
// is the client's view of the cart and must agree with the server's; a nil
// req submits the server cart as-is. The cart is cleared only after the
// order committed; a failed submission leaves the cart exactly as it was so
// the user can retry.
func (s *service) CreateFromCart(ctx context.Context, userID uuid.UUID, req *SubmitOrderRequest) (*OrderDTO, error) {
	container, err := s.carts.ForUser(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	items := container.Items()
	vendor := container.Vendor()
	if vendor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no kantin selected")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if req != nil {
		if err := validateSubmission(userID, vendor, items, req); err != nil {
			return nil, err
		}
	}

	if err := s.checkMenu(ctx, vendor.ID, items); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		KantinID:      vendor.ID,
		TotalPrice:    container.Total(),
		PaymentStatus: enums.PaymentStatusPending,
		Items:         make([]models.OrderItem, 0, len(items)),
	}
	for _, line := range items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:      line.ID,
			Quantity:        line.Quantity,
			PriceAtPurchase: decimal.NewFromFloat(line.Price),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	container.ClearCart()
	if err := s.carts.FlushUser(ctx, userID.String()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "flushing cart after order failed")
	}

	return fromModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *fromModel(&orders[i]))
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, id uint, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return fromModel(order), nil
}

// validateSubmission checks a client payload against the server-held cart.
// A payload describing a different user, kantin, or set of lines means the
// client is out of date and must refetch its cart before resubmitting.
func validateSubmission(userID uuid.UUID, vendor *cart.VendorDescriptor, items []cart.LineItem, req *SubmitOrderRequest) error {
	if req.UserID != userID.String() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order user does not match caller")
	}
	if req.KantinID != vendor.ID {
		return pkgerrors.New(pkgerrors.CodeValidation, "order kantin does not match cart").
			WithDetails(map[string]uint{"warung_id": vendor.ID})
	}
	if len(req.OrderItems) != len(items) {
		return pkgerrors.New(pkgerrors.CodeValidation, "order items do not match cart")
	}

	quantities := make(map[uint]int, len(items))
	for _, line := range items {
		quantities[line.ID] = line.Quantity
	}
	for _, line := range req.OrderItems {
		if qty, ok := quantities[line.MenuItemID]; !ok || qty != line.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "order items do not match cart").
				WithDetails(map[string]uint{"menu_item_id": line.MenuItemID})
		}
	}
	return nil
}

// checkMenu verifies every cart line still points at a live menu item of the
// selected kantin. Items deleted or moved since they were added surface as a
// validation error rather than a broken order.
func (s *service) checkMenu(ctx context.Context, kantinID uint, items []cart.LineItem) error {
	ids := make([]uint, 0, len(items))
	for _, line := range items {
		ids = append(ids, line.ID)
	}

	found, err := s.menus.FindMenuItems(ctx, kantinID, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu items")
	}

	available := make(map[uint]bool, len(found))
	for _, item := range found {
		available[item.ID] = item.IsAvailable
	}
	for _, line := range items {
		ok, present := available[line.ID]
		if !present {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains an unknown menu item").
				WithDetails(map[string]uint{"menu_item_id": line.ID})
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item is no longer available").
				WithDetails(map[string]uint{"menu_item_id": line.ID})
		}
	}
	return nil
}
