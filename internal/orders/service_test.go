package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/internal/cartstore"
	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
	"github.com/webcraft-id/kantinku-backend/pkg/enums"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
)

type stubOrderRepo struct {
	created   *models.Order
	orders    []models.Order
	order     *models.Order
	createErr error
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	order.ID = 101
	s.created = order
	return nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubOrderRepo) FindByIDAndUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubMenus struct {
	items   []models.MenuItem
	loadErr error
}

func (s *stubMenus) FindMenuItems(ctx context.Context, kantinID uint, itemIDs []uint) ([]models.MenuItem, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.items, nil
}

func availableMenu(ids ...uint) *stubMenus {
	menus := &stubMenus{}
	for _, id := range ids {
		menus.items = append(menus.items, models.MenuItem{
			ID:          id,
			KantinID:    7,
			Price:       decimal.NewFromInt(15000),
			IsAvailable: true,
		})
	}
	return menus
}

func newCartManager(t *testing.T) *cart.Manager {
	t.Helper()
	manager, err := cart.NewManager(cart.ManagerParams{
		Stores:   cartstore.NewMemoryFactory(),
		Debounce: time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { manager.Close(context.Background()) })
	return manager
}

func newTestService(t *testing.T, repo OrderRepository, carts *cart.Manager, menus menuLoader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrderRepo:   repo,
		Tx:          stubTx{},
		CartManager: carts,
		MenuLoader:  menus,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func fillCart(t *testing.T, carts *cart.Manager, userID uuid.UUID) *cart.Container {
	t.Helper()
	container, err := carts.ForUser(context.Background(), userID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	container.SwitchVendor(cart.VendorDescriptor{ID: 7, Name: "Warung Bu Siti"})
	container.AddItem(cart.LineItem{ID: 1, KantinID: 7, Name: "Nasi Goreng", Price: 15000})
	container.AddItem(cart.LineItem{ID: 1, KantinID: 7, Name: "Nasi Goreng", Price: 15000})
	return container
}

func TestCreateFromCartSubmitsAndClearsCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	container := fillCart(t, carts, userID)
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, carts, availableMenu(1))

	got, err := svc.CreateFromCart(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 101 || got.KantinID != 7 || got.UserID != userID {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", got.PaymentStatus)
	}
	if got.TotalPrice != 30000 {
		t.Fatalf("expected total 30000, got %v", got.TotalPrice)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 || got.Items[0].PriceAtPurchase != 15000 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	if repo.created == nil || !repo.created.TotalPrice.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("unexpected persisted order: %+v", repo.created)
	}
	if count := len(container.Items()); count != 0 {
		t.Fatalf("expected cart cleared after submission, got %d lines", count)
	}
	if container.Vendor() == nil {
		t.Fatal("expected vendor kept after submission")
	}
}

func TestCreateFromCartKeepsCartOnFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	container := fillCart(t, carts, userID)
	repo := &stubOrderRepo{createErr: errors.New("db down")}
	svc := newTestService(t, repo, carts, availableMenu(1))

	_, err := svc.CreateFromCart(context.Background(), userID, nil)
	if err == nil {
		t.Fatal("expected error when the insert fails")
	}
	if count := len(container.Items()); count != 1 {
		t.Fatalf("expected cart untouched on failure, got %d lines", count)
	}
}

func TestCreateFromCartRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	container, err := carts.ForUser(context.Background(), userID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	container.SwitchVendor(cart.VendorDescriptor{ID: 7, Name: "Warung Bu Siti"})
	svc := newTestService(t, &stubOrderRepo{}, carts, availableMenu(1))

	_, err = svc.CreateFromCart(context.Background(), userID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFromCartRejectsMissingVendor(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	if _, err := carts.ForUser(context.Background(), userID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc := newTestService(t, &stubOrderRepo{}, carts, availableMenu(1))

	_, err := svc.CreateFromCart(context.Background(), userID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFromCartRejectsUnknownMenuItem(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	fillCart(t, carts, userID)
	svc := newTestService(t, &stubOrderRepo{}, carts, &stubMenus{})

	_, err := svc.CreateFromCart(context.Background(), userID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFromCartRejectsUnavailableMenuItem(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	fillCart(t, carts, userID)
	menus := &stubMenus{items: []models.MenuItem{
		{ID: 1, KantinID: 7, Price: decimal.NewFromInt(15000), IsAvailable: false},
	}}
	svc := newTestService(t, &stubOrderRepo{}, carts, menus)

	_, err := svc.CreateFromCart(context.Background(), userID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func cartPayload(userID uuid.UUID) *SubmitOrderRequest {
	return &SubmitOrderRequest{
		UserID:        userID.String(),
		KantinID:      7,
		TotalPrice:    30000,
		PaymentStatus: "pending",
		OrderItems: []SubmitOrderItem{
			{MenuItemID: 1, Quantity: 2, PriceAtPurchase: 15000},
		},
	}
}

func TestCreateFromCartAcceptsMatchingPayload(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	fillCart(t, carts, userID)
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, carts, availableMenu(1))

	got, err := svc.CreateFromCart(context.Background(), userID, cartPayload(userID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 101 || got.KantinID != 7 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestCreateFromCartRejectsMismatchedKantin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	fillCart(t, carts, userID)
	svc := newTestService(t, &stubOrderRepo{}, carts, availableMenu(1))

	req := cartPayload(userID)
	req.KantinID = 9

	_, err := svc.CreateFromCart(context.Background(), userID, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFromCartRejectsMismatchedItems(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	container := fillCart(t, carts, userID)
	svc := newTestService(t, &stubOrderRepo{}, carts, availableMenu(1))

	req := cartPayload(userID)
	req.OrderItems[0].Quantity = 5

	_, err := svc.CreateFromCart(context.Background(), userID, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if count := len(container.Items()); count != 1 {
		t.Fatalf("expected cart untouched on rejection, got %d lines", count)
	}
}

func TestCreateFromCartRejectsForeignUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	carts := newCartManager(t)
	fillCart(t, carts, userID)
	svc := newTestService(t, &stubOrderRepo{}, carts, availableMenu(1))

	req := cartPayload(uuid.New())

	_, err := svc.CreateFromCart(context.Background(), userID, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubOrderRepo{orders: []models.Order{
		{
			ID:            5,
			UserID:        userID,
			KantinID:      7,
			TotalPrice:    decimal.NewFromInt(30000),
			PaymentStatus: enums.PaymentStatusPaid,
			Items: []models.OrderItem{
				{MenuItemID: 1, Quantity: 2, PriceAtPurchase: decimal.NewFromInt(15000)},
			},
		},
	}}
	svc := newTestService(t, repo, newCartManager(t), availableMenu())

	got, err := svc.ListOrders(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 5 || got[0].TotalPrice != 30000 {
		t.Fatalf("unexpected orders: %+v", got)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{}, newCartManager(t), availableMenu())

	_, err := svc.GetOrder(context.Background(), 99, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
