package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
	"github.com/webcraft-id/kantinku-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE kantins (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  is_open INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE menu_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kantin_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  image_url TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  kantin_id INTEGER NOT NULL,
  total_price NUMERIC NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  menu_item_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_purchase NUMERIC NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func seedMenuItem(t *testing.T, db *gorm.DB, kantinID uint, name string, price float64) models.MenuItem {
	t.Helper()

	item := models.MenuItem{
		KantinID:    kantinID,
		Name:        name,
		Price:       decimal.NewFromFloat(price),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestRepositoryCreatePersistsOrderWithItems(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	item := seedMenuItem(t, db, 3, "Nasi Goreng", 15000)

	order := &models.Order{
		UserID:        userID,
		KantinID:      3,
		TotalPrice:    decimal.NewFromFloat(30000),
		PaymentStatus: enums.PaymentStatusPending,
		Items: []models.OrderItem{
			{MenuItemID: item.ID, Quantity: 2, PriceAtPurchase: decimal.NewFromFloat(15000)},
		},
	}
	require.NoError(t, repo.Create(context.Background(), order))
	require.NotZero(t, order.ID)

	loaded, err := repo.FindByIDAndUser(context.Background(), order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), loaded.KantinID)
	assert.Equal(t, enums.PaymentStatusPending, loaded.PaymentStatus)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, loaded.Items[0].PriceAtPurchase.Equal(decimal.NewFromFloat(15000)))
	require.NotNil(t, loaded.Items[0].MenuItem)
	assert.Equal(t, "Nasi Goreng", loaded.Items[0].MenuItem.Name)
}

func TestRepositoryListByUserReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	older := &models.Order{
		UserID:        userID,
		KantinID:      1,
		TotalPrice:    decimal.NewFromFloat(8000),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), older))
	require.NoError(t, db.Model(older).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	newer := &models.Order{
		UserID:        userID,
		KantinID:      2,
		TotalPrice:    decimal.NewFromFloat(12000),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), newer))

	// Another user's order must not leak into the listing.
	other := &models.Order{
		UserID:        uuid.New(),
		KantinID:      1,
		TotalPrice:    decimal.NewFromFloat(5000),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), other))

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestRepositoryFindByIDAndUserScopesToOwner(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	owner := uuid.New()

	order := &models.Order{
		UserID:        owner,
		KantinID:      4,
		TotalPrice:    decimal.NewFromFloat(20000),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), order))

	_, err := repo.FindByIDAndUser(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryWithTxRollbackDiscardsOrder(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	tx := db.Begin()
	require.NoError(t, tx.Error)

	order := &models.Order{
		UserID:        userID,
		KantinID:      1,
		TotalPrice:    decimal.NewFromFloat(9000),
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.WithTx(tx).Create(context.Background(), order))
	require.NoError(t, tx.Rollback().Error)

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
