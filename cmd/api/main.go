package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maisonaurelle/boutique-backend/api/routes"
	"github.com/maisonaurelle/boutique-backend/internal/cart"
	"github.com/maisonaurelle/boutique-backend/internal/catalog"
	"github.com/maisonaurelle/boutique-backend/internal/checkout"
	"github.com/maisonaurelle/boutique-backend/internal/notifications"
	"github.com/maisonaurelle/boutique-backend/internal/orders"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	"github.com/maisonaurelle/boutique-backend/pkg/db"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	"github.com/maisonaurelle/boutique-backend/pkg/mailer"
	"github.com/maisonaurelle/boutique-backend/pkg/metrics"
	"github.com/maisonaurelle/boutique-backend/pkg/migrate"
	"github.com/maisonaurelle/boutique-backend/pkg/payments"
	"github.com/maisonaurelle/boutique-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	squareClient, err := payments.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail client", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(cart.NewStore(), cart.NewMirrorRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewNotifier(notificationsRepo, mailClient, cfg.App.BaseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		dbClient,
		cartService,
		catalogRepo,
		ordersRepo,
		checkout.NewSquareGateway(squareClient),
		notifier,
		logg,
		metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
		cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterDeps{
			Config:        cfg,
			Logger:        logg,
			Redis:         redisClient,
			Catalog:       catalogRepo,
			Cart:          cartService,
			Checkout:      checkoutService,
			Orders:        ordersService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
