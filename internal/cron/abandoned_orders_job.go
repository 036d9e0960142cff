package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

const defaultPendingOrderTTL = 48 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AbandonedOrdersJobParams configure the stale pending order sweeper.
type AbandonedOrdersJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders orders.Repository
	TTL    time.Duration
}

// NewAbandonedOrdersJob builds the cron job that cancels pending orders
// whose payment widget was dismissed and never completed. An order that
// progressed past pending between the scan and the update is left alone.
func NewAbandonedOrdersJob(params AbandonedOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	return &abandonedOrdersJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type abandonedOrdersJob struct {
	logg   *logger.Logger
	db     txRunner
	orders orders.Repository
	ttl    time.Duration
	now    func() time.Time
}

func (j *abandonedOrdersJob) Name() string { return "abandoned-orders" }

func (j *abandonedOrdersJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, order := range stale {
		ok, err := j.cancelOrder(ctx, order)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			cancelled++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":   len(stale),
		"cancelled": cancelled,
	})
	j.logg.Info(logCtx, "abandoned order sweep complete")
	return multierr.Combine(errs...)
}

func (j *abandonedOrdersJob) cancelOrder(ctx context.Context, order models.Order) (bool, error) {
	cancelled := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("reload order %s: %w", order.ID, err)
		}
		// Re-check under the transaction: a payment callback may have moved
		// the order since the scan.
		if current.Status != enums.OrderStatusPending {
			return nil
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, nil); err != nil {
			return fmt.Errorf("cancel order %s: %w", order.ID, err)
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cancelled, nil
}
