package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks order placement and stock adjustment outcomes.
type CheckoutMetrics struct {
	ordersPlaced      prometheus.Counter
	paymentsConfirmed prometheus.Counter
	stockFallbacks    prometheus.Counter
	stockFailures     prometheus.Counter
	lowStockAlerts    prometheus.Counter
	unresolvedItems   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout pipeline metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders persisted in pending state.",
	})
	paymentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Orders transitioned to processing after payment confirmation.",
	})
	stockFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrement_fallbacks_total",
		Help: "Stock decrements that missed by id and matched by product name.",
	})
	stockFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrement_failures_total",
		Help: "Stock decrements that matched no product row.",
	})
	lowStockAlerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Low stock alerts raised after decrements.",
	})
	unresolvedItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unresolved_cart_items_total",
		Help: "Cart items persisted with an unresolved product reference.",
	})
	reg.MustRegister(ordersPlaced, paymentsConfirmed, stockFallbacks, stockFailures, lowStockAlerts, unresolvedItems)
	return &CheckoutMetrics{
		ordersPlaced:      ordersPlaced,
		paymentsConfirmed: paymentsConfirmed,
		stockFallbacks:    stockFallbacks,
		stockFailures:     stockFailures,
		lowStockAlerts:    lowStockAlerts,
		unresolvedItems:   unresolvedItems,
	}
}

// IncOrdersPlaced increments the order placement counter.
func (c *CheckoutMetrics) IncOrdersPlaced() {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.Inc()
}

// IncPaymentsConfirmed increments the payment confirmation counter.
func (c *CheckoutMetrics) IncPaymentsConfirmed() {
	if c == nil || c.paymentsConfirmed == nil {
		return
	}
	c.paymentsConfirmed.Inc()
}

// IncStockFallback increments the by-name fallback counter.
func (c *CheckoutMetrics) IncStockFallback() {
	if c == nil || c.stockFallbacks == nil {
		return
	}
	c.stockFallbacks.Inc()
}

// IncStockFailure increments the failed decrement counter.
func (c *CheckoutMetrics) IncStockFailure() {
	if c == nil || c.stockFailures == nil {
		return
	}
	c.stockFailures.Inc()
}

// IncLowStockAlert increments the low stock alert counter.
func (c *CheckoutMetrics) IncLowStockAlert() {
	if c == nil || c.lowStockAlerts == nil {
		return
	}
	c.lowStockAlerts.Inc()
}

// IncUnresolvedItem increments the unresolved cart item counter.
func (c *CheckoutMetrics) IncUnresolvedItem() {
	if c == nil || c.unresolvedItems == nil {
		return
	}
	c.unresolvedItems.Inc()
}
