package cart

import (
	"context"
	"fmt"
	"strings"
)

// Mirror is the external cart persistence surface the service replicates to.
type Mirror interface {
	UpsertLine(ctx context.Context, ownerKey, productID, variant string, quantity int) error
	DeleteLine(ctx context.Context, ownerKey, productID, variant string) error
	DeleteAllLines(ctx context.Context, ownerKey string) error
}

type mirrorLogger interface {
	WithField(ctx context.Context, key string, value any) context.Context
	Warn(ctx context.Context, msg string)
}

// Service owns cart mutations. The in-memory store is authoritative and
// updated synchronously; the mirror write is dispatched afterwards and its
// failure is logged, never surfaced. Guests (no persistent owner) skip the
// mirror entirely.
type Service struct {
	store  *Store
	mirror Mirror
	logger mirrorLogger

	// dispatch runs mirror writes. Defaults to a goroutine; tests override
	// it to run synchronously.
	dispatch func(func())
}

// NewService builds a cart service. mirror may be nil when the deployment
// runs without persistent carts.
func NewService(store *Store, mirror Mirror, logg mirrorLogger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		store:    store,
		mirror:   mirror,
		logger:   logg,
		dispatch: func(fn func()) { go fn() },
	}, nil
}

// AddItem merges the product into the owner's cart and mirrors the
// resulting line for authenticated shoppers.
func (s *Service) AddItem(ctx context.Context, ownerKey string, persistent bool, input AddInput) Line {
	var line Line
	s.store.WithCart(ownerKey, func(c *Cart) {
		line = *c.Add(input)
	})
	s.mirrorWrite(ctx, ownerKey, persistent, func(mctx context.Context) error {
		return s.mirror.UpsertLine(mctx, ownerKey, line.ProductID, line.SelectedVariant, line.Quantity)
	})
	return line
}

// UpdateQuantity overwrites a line's quantity; a quantity below 1 removes
// the line. Reports whether the line existed.
func (s *Service) UpdateQuantity(ctx context.Context, ownerKey string, persistent bool, compositeID string, quantity int) bool {
	var before Line
	var removed, ok bool
	s.store.WithCart(ownerKey, func(c *Cart) {
		before, ok = c.Get(compositeID)
		if !ok {
			return
		}
		removed, _ = c.UpdateQuantity(compositeID, quantity)
	})
	if !ok {
		return false
	}
	if removed {
		s.mirrorWrite(ctx, ownerKey, persistent, func(mctx context.Context) error {
			return s.mirror.DeleteLine(mctx, ownerKey, before.ProductID, before.SelectedVariant)
		})
		return true
	}
	s.mirrorWrite(ctx, ownerKey, persistent, func(mctx context.Context) error {
		return s.mirror.UpsertLine(mctx, ownerKey, before.ProductID, before.SelectedVariant, quantity)
	})
	return true
}

// RemoveItem deletes a line. Reports whether the line existed.
func (s *Service) RemoveItem(ctx context.Context, ownerKey string, persistent bool, compositeID string) bool {
	var before Line
	var ok bool
	s.store.WithCart(ownerKey, func(c *Cart) {
		before, ok = c.Get(compositeID)
		if ok {
			c.Remove(compositeID)
		}
	})
	if !ok {
		return false
	}
	s.mirrorWrite(ctx, ownerKey, persistent, func(mctx context.Context) error {
		return s.mirror.DeleteLine(mctx, ownerKey, before.ProductID, before.SelectedVariant)
	})
	return true
}

// Clear empties the owner's cart, used after a successful order.
func (s *Service) Clear(ctx context.Context, ownerKey string, persistent bool) {
	s.store.WithCart(ownerKey, func(c *Cart) {
		c.Clear()
	})
	s.mirrorWrite(ctx, ownerKey, persistent, func(mctx context.Context) error {
		return s.mirror.DeleteAllLines(mctx, ownerKey)
	})
}

// Snapshot returns the owner's lines plus derived totals.
func (s *Service) Snapshot(ownerKey string) ([]Line, int, int) {
	return s.store.Snapshot(ownerKey)
}

func (s *Service) mirrorWrite(ctx context.Context, ownerKey string, persistent bool, write func(context.Context) error) {
	if !persistent || s.mirror == nil || strings.TrimSpace(ownerKey) == "" {
		return
	}
	// Detach from the request context so an aborted request cannot cancel
	// the replication write mid-flight.
	mctx := context.WithoutCancel(ctx)
	s.dispatch(func() {
		if err := write(mctx); err != nil {
			lctx := s.logger.WithField(mctx, "ownerKey", ownerKey)
			lctx = s.logger.WithField(lctx, "error", err.Error())
			s.logger.Warn(lctx, "cart mirror write failed")
		}
	})
}
