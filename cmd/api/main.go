package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webcraft-id/kantinku-backend/api/routes"
	"github.com/webcraft-id/kantinku-backend/internal/auth"
	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/internal/cartstore"
	"github.com/webcraft-id/kantinku-backend/internal/kantins"
	"github.com/webcraft-id/kantinku-backend/internal/orders"
	"github.com/webcraft-id/kantinku-backend/internal/users"
	"github.com/webcraft-id/kantinku-backend/pkg/auth/session"
	"github.com/webcraft-id/kantinku-backend/pkg/config"
	"github.com/webcraft-id/kantinku-backend/pkg/db"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
	"github.com/webcraft-id/kantinku-backend/pkg/metrics"
	"github.com/webcraft-id/kantinku-backend/pkg/migrate"
	"github.com/webcraft-id/kantinku-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartMetrics := metrics.NewCartMetrics(prometheus.DefaultRegisterer)
	cartManager, err := cart.NewManager(cart.ManagerParams{
		Stores:   cartStores(cfg, redisClient),
		Logger:   logg,
		Metrics:  cartMetrics,
		Debounce: cfg.Cart.DebounceWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		CartManager:    cartManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	kantinRepo := kantins.NewRepository(dbClient.DB())
	kantinService, err := kantins.NewService(kantinRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create kantin service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		OrderRepo:   orders.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		CartManager: cartManager,
		MenuLoader:  kantinRepo,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			RedisClient:    redisClient,
			SessionManager: sessionManager,
			CartManager:    cartManager,
			AuthService:    authService,
			KantinService:  kantinService,
			OrderService:   orderService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down http server", err)
		}
		// Pending cart state flushes before the stores go away.
		if err := cartManager.Close(shutdownCtx); err != nil {
			logg.Error(ctx, "error flushing cart sessions", err)
		}
	}
}

// cartStores picks the record store backend. Redis in production, plain
// files for local dev without Redis, memory for throwaway runs.
func cartStores(cfg *config.Config, redisClient *redis.Client) cart.StoreFactory {
	switch cfg.Cart.StoreBackend {
	case "file":
		return cartstore.FileFactory{Dir: cfg.Cart.FileDir}
	case "memory":
		return cartstore.NewMemoryFactory()
	default:
		return cartstore.RedisFactory{Client: redisClient, TTL: cfg.Cart.RecordTTL}
	}
}
