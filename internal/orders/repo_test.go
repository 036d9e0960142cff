package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  total_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  email TEXT NOT NULL,
  shipping_address TEXT,
  payment_reference TEXT,
  user_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  variant_name TEXT,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func newOrder(t *testing.T, db *gorm.DB, email string, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         uuid.New(),
		Status:     status,
		TotalCents: 24500,
		Currency:   "USD",
		Email:      email,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCreateOrderWithLines(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := repo.CreateOrder(ctx, &models.Order{
		ID:         uuid.New(),
		Status:     enums.OrderStatusPending,
		TotalCents: 2450000,
		Currency:   "USD",
		Email:      "shopper@example.com",
	})
	require.NoError(t, err)

	lines := []models.OrderLine{{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ProductID:      uuid.NewString(),
		ProductName:    "Royal Chrono",
		UnitPriceCents: 2450000,
		Quantity:       1,
	}}
	require.NoError(t, repo.CreateOrderLines(ctx, lines))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "Royal Chrono", found.Lines[0].ProductName)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
}

func TestFindByIDMissingReturnsNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateStatusRecordsPaymentReference(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := newOrder(t, db, "shopper@example.com", enums.OrderStatusPending, time.Now())

	ref := "sq-payment-123"
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing, &ref))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
	require.NotNil(t, found.PaymentReference)
	assert.Equal(t, ref, *found.PaymentReference)
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusCancelled, nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestFindPendingBefore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	stale := newOrder(t, db, "a@example.com", enums.OrderStatusPending, now.Add(-72*time.Hour))
	newOrder(t, db, "b@example.com", enums.OrderStatusPending, now.Add(-time.Hour))
	newOrder(t, db, "c@example.com", enums.OrderStatusProcessing, now.Add(-72*time.Hour))

	found, err := repo.FindPendingBefore(context.Background(), now.Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}

func TestListOrdersPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		newOrder(t, db, "shopper@example.com", enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListOrders(ctx, pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListOrders(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)
}

func TestListOrdersFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	newOrder(t, db, "match@example.com", enums.OrderStatusProcessing, now)
	newOrder(t, db, "match@example.com", enums.OrderStatusPending, now)
	newOrder(t, db, "other@example.com", enums.OrderStatusProcessing, now)

	status := enums.OrderStatusProcessing
	list, err := repo.ListOrders(ctx, pagination.Params{Limit: 10}, OrderFilters{
		Status: &status,
		Email:  "match@example.com",
	})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "match@example.com", list.Orders[0].Email)
}
