package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maisonaurelle/boutique-backend/api/controllers"
	"github.com/maisonaurelle/boutique-backend/api/middleware"
	"github.com/maisonaurelle/boutique-backend/internal/cart"
	"github.com/maisonaurelle/boutique-backend/internal/catalog"
	checkoutsvc "github.com/maisonaurelle/boutique-backend/internal/checkout"
	"github.com/maisonaurelle/boutique-backend/internal/notifications"
	ordersvc "github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	pkgredis "github.com/maisonaurelle/boutique-backend/pkg/redis"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Redis         *pkgredis.Client
	Catalog       catalog.ProductRepository
	Cart          *cart.Service
	Checkout      checkoutsvc.Service
	Orders        ordersvc.Service
	Notifications notifications.Service
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Redis, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Catalog, logg))
		})
		r.Get("/orders/track", controllers.TrackOrder(deps.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Shopper(cfg.JWT, logg))

			r.Get("/orders", controllers.ListMyOrders(deps.Orders, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/items", controllers.GetCart(deps.Cart, logg))
				r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
				r.Patch("/items/{compositeID}", controllers.UpdateCartItem(deps.Cart, logg))
				r.Delete("/items/{compositeID}", controllers.RemoveCartItem(deps.Cart, logg))
				r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Idempotency(deps.Redis, logg))
				r.Post("/checkout", controllers.PlaceOrder(deps.Checkout, logg))
				r.Post("/checkout/{orderID}/confirm", controllers.ConfirmPayment(deps.Checkout, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole("admin", logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
				r.Get("/{orderID}", controllers.AdminGetOrder(deps.Orders, logg))
				r.Post("/{orderID}/status", controllers.AdminTransitionOrder(deps.Orders, logg))
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.AdminListNotifications(deps.Notifications, logg))
				r.Post("/{notificationID}/read", controllers.AdminMarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(deps.Notifications, logg))
			})
		})
	})

	return r
}
