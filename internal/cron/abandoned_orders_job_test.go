package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupJobDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	schema := `
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
);
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
	if err := db.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, age time.Duration) uuid.UUID {
	t.Helper()

	created := time.Now().UTC().Add(-age)
	order := &models.Order{
		ID:         uuid.New(),
		Status:     status,
		TotalCents: 24500,
		Currency:   "USD",
		Email:      "shopper@example.com",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order.ID
}

func orderStatus(t *testing.T, db *gorm.DB, id uuid.UUID) enums.OrderStatus {
	t.Helper()

	var order models.Order
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	return order.Status
}

func newSweeper(t *testing.T, db *gorm.DB, ttl time.Duration) Job {
	t.Helper()

	job, err := NewAbandonedOrdersJob(AbandonedOrdersJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:     gormTxRunner{db: db},
		Orders: orders.NewRepository(db),
		TTL:    ttl,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job
}

func TestAbandonedOrdersJobCancelsStalePending(t *testing.T) {
	db := setupJobDB(t)
	stale := seedOrder(t, db, enums.OrderStatusPending, 72*time.Hour)
	fresh := seedOrder(t, db, enums.OrderStatusPending, time.Hour)

	job := newSweeper(t, db, 48*time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}

	if got := orderStatus(t, db, stale); got != enums.OrderStatusCancelled {
		t.Fatalf("stale order status = %s, want cancelled", got)
	}
	if got := orderStatus(t, db, fresh); got != enums.OrderStatusPending {
		t.Fatalf("fresh order status = %s, want pending", got)
	}
}

func TestAbandonedOrdersJobSkipsProgressedOrders(t *testing.T) {
	db := setupJobDB(t)
	paid := seedOrder(t, db, enums.OrderStatusProcessing, 72*time.Hour)
	shipped := seedOrder(t, db, enums.OrderStatusShipped, 96*time.Hour)

	job := newSweeper(t, db, 48*time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}

	if got := orderStatus(t, db, paid); got != enums.OrderStatusProcessing {
		t.Fatalf("processing order status = %s, want processing", got)
	}
	if got := orderStatus(t, db, shipped); got != enums.OrderStatusShipped {
		t.Fatalf("shipped order status = %s, want shipped", got)
	}
}

func TestAbandonedOrdersJobEmptySweep(t *testing.T) {
	db := setupJobDB(t)
	job := newSweeper(t, db, 48*time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
}
