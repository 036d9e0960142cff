package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maisonaurelle/boutique-backend/internal/cart"
	"github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	"github.com/maisonaurelle/boutique-backend/pkg/db/models"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	"github.com/maisonaurelle/boutique-backend/pkg/metrics"
	"github.com/maisonaurelle/boutique-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogStore is the catalog surface the pipeline depends on.
type CatalogStore interface {
	FindByName(ctx context.Context, name string) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	DecrementStockByName(ctx context.Context, name string, quantity int) (bool, error)
	StockLevel(ctx context.Context, ref string) (int, bool, error)
}

// PaymentGateway settles payments for the pipeline. Verify checks a
// reference produced by the hosted widget against the processor, including
// the settled amount; Charge creates the payment server-side from a
// tokenized source and returns the new reference.
type PaymentGateway interface {
	Verify(ctx context.Context, paymentRef string, amountCents int64, currency string) (bool, error)
	Charge(ctx context.Context, order *models.Order, sourceID string) (string, error)
}

// Notifier is the side-effect surface fired after a successful order. Every
// call is best-effort from the pipeline's point of view.
type Notifier interface {
	SendOrderAlert(ctx context.Context, order *models.Order) error
	SendLowStockAlert(ctx context.Context, productRef, productName string, remaining int) error
	SendCustomerConfirmation(ctx context.Context, order *models.Order) error
}

// Service executes the checkout pipeline: identity resolution, order
// persistence, payment confirmation, stock adjustment, and side effects.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error)
}

// PlaceOrderInput carries the shopper-entered checkout fields.
type PlaceOrderInput struct {
	OwnerKey        string
	Persistent      bool
	Email           string
	ShippingAddress *types.Address
	UserID          *uuid.UUID
}

// ConfirmPaymentInput carries the gateway success callback fields. Exactly
// one of PaymentRef and SourceID must be set: PaymentRef verifies a payment
// the hosted widget already captured, SourceID has the backend create the
// charge itself.
type ConfirmPaymentInput struct {
	OrderID    uuid.UUID
	PaymentRef string
	SourceID   string
	OwnerKey   string
	Persistent bool
}

type service struct {
	tx       txRunner
	carts    *cart.Service
	resolver *Resolver
	catalog  CatalogStore
	orders   orders.Repository
	gateway  PaymentGateway
	notifier Notifier
	logger   *logger.Logger
	metrics  *metrics.CheckoutMetrics
	cfg      config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	carts *cart.Service,
	catalog CatalogStore,
	ordersRepo orders.Repository,
	gateway PaymentGateway,
	notifier Notifier,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
	cfg config.CheckoutConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		carts:    carts,
		resolver: NewResolver(catalog, logg),
		catalog:  catalog,
		orders:   ordersRepo,
		gateway:  gateway,
		notifier: notifier,
		logger:   logg,
		metrics:  checkoutMetrics,
		cfg:      cfg,
	}, nil
}

// PlaceOrder resolves the cart lines and persists the order header plus its
// lines in one transaction, leaving the order in pending state. The cart is
// left untouched until payment succeeds.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	lines, totalCents, _ := s.carts.Snapshot(input.OwnerKey)
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	resolved := s.resolver.ResolveAll(ctx, lines)
	for _, line := range resolved {
		if !IsUUIDShaped(line.ResolvedProductID) {
			s.metrics.IncUnresolvedItem()
			lctx := s.logger.WithField(ctx, "compositeId", line.CompositeID)
			lctx = s.logger.WithField(lctx, "resolvedProductId", line.ResolvedProductID)
			s.logger.Warn(lctx, "cart line persisted with unresolved product reference")
		}
	}

	order := &models.Order{
		Status:          enums.OrderStatusPending,
		TotalCents:      totalCents,
		Currency:        s.currency(),
		Email:           email,
		ShippingAddress: input.ShippingAddress,
		UserID:          input.UserID,
	}

	// Header and lines commit atomically so a line insert failure cannot
	// leave a headless pending order behind.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		orderLines := make([]models.OrderLine, 0, len(resolved))
		for _, line := range resolved {
			var variant *string
			if line.SelectedVariant != "" {
				v := line.SelectedVariant
				variant = &v
			}
			orderLines = append(orderLines, models.OrderLine{
				OrderID:        order.ID,
				ProductID:      line.ResolvedProductID,
				ProductName:    StripVariantAnnotation(line.Name, line.SelectedVariant),
				VariantName:    variant,
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
			})
		}
		if err := repo.CreateOrderLines(ctx, orderLines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}
		order.Lines = orderLines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersPlaced()
	lctx := s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(lctx, "order placed")
	return order, nil
}

// ConfirmPayment settles the order's payment, either by verifying the
// reference the hosted widget produced or by charging the supplied source
// server-side. It then moves the order from pending to processing, adjusts
// stock line by line, and fires the post-order side effects. Stock and
// notification failures never fail the confirmation; payment has already
// been captured.
func (s *service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error) {
	ref := strings.TrimSpace(input.PaymentRef)
	source := strings.TrimSpace(input.SourceID)
	if ref == "" && source == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference or source id is required")
	}
	if ref != "" && source != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference and source id are mutually exclusive")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, expected pending", order.Status))
	}

	if source != "" {
		ref, err = s.gateway.Charge(ctx, order, source)
		if err != nil {
			return nil, err
		}
	} else {
		ok, err := s.gateway.Verify(ctx, ref, int64(order.TotalCents), order.Currency)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodePayment, "payment not completed for the order total")
		}
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing, &ref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = enums.OrderStatusProcessing
	order.PaymentReference = &ref
	s.metrics.IncPaymentsConfirmed()

	lctx := s.logger.WithOrderID(ctx, order.ID.String())
	s.adjustStock(lctx, order)

	// Side effects are independent; any one failing must not prevent the
	// others or the success response.
	if err := s.notifier.SendOrderAlert(lctx, order); err != nil {
		s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "order alert failed")
	}
	if err := s.notifier.SendCustomerConfirmation(lctx, order); err != nil {
		s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "customer confirmation email failed")
	}
	s.carts.Clear(lctx, input.OwnerKey, input.Persistent)

	s.logger.Info(lctx, "payment confirmed")
	return order, nil
}

// adjustStock decrements inventory for every order line, sequentially. Per
// line: decrement by resolved id, fall back to decrement by clean name, and
// when both miss log the inconsistency and move on. After either successful
// path the remaining quantity is checked against the low stock threshold.
func (s *service) adjustStock(ctx context.Context, order *models.Order) {
	for _, line := range order.Lines {
		lctx := s.logger.WithProductID(ctx, line.ProductID)

		decremented := false
		if id, err := uuid.Parse(line.ProductID); err == nil {
			matched, err := s.catalog.DecrementStock(lctx, id, line.Quantity)
			if err != nil {
				s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "stock decrement by id failed")
			}
			decremented = err == nil && matched
		}

		stockRef := line.ProductID
		if !decremented {
			name := CleanName(line.ProductName)
			matched, err := s.catalog.DecrementStockByName(lctx, name, line.Quantity)
			if err != nil {
				s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "stock decrement by name failed")
			}
			if err == nil && matched {
				decremented = true
				stockRef = name
				s.metrics.IncStockFallback()
			}
		}

		if !decremented {
			s.metrics.IncStockFailure()
			s.logger.Error(lctx, "stock decrement failed on both id and name paths", nil)
			continue
		}

		remaining, found, err := s.catalog.StockLevel(lctx, stockRef)
		if err != nil {
			s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "low stock check failed")
			continue
		}
		if found && remaining <= s.threshold() {
			s.metrics.IncLowStockAlert()
			if err := s.notifier.SendLowStockAlert(lctx, line.ProductID, CleanName(line.ProductName), remaining); err != nil {
				s.logger.Warn(s.logger.WithField(lctx, "error", err.Error()), "low stock alert failed")
			}
		}
	}
}

func (s *service) threshold() int {
	if s.cfg.LowStockThreshold > 0 {
		return s.cfg.LowStockThreshold
	}
	return 3
}

func (s *service) currency() string {
	if trimmed := strings.TrimSpace(s.cfg.Currency); trimmed != "" {
		return strings.ToUpper(trimmed)
	}
	return "USD"
}
