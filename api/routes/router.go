package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webcraft-id/kantinku-backend/api/controllers"
	"github.com/webcraft-id/kantinku-backend/api/middleware"
	"github.com/webcraft-id/kantinku-backend/internal/auth"
	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/internal/kantins"
	"github.com/webcraft-id/kantinku-backend/internal/orders"
	"github.com/webcraft-id/kantinku-backend/pkg/auth/session"
	"github.com/webcraft-id/kantinku-backend/pkg/config"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
	"github.com/webcraft-id/kantinku-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisClient    *redis.Client
	SessionManager session.AccessSessionChecker
	CartManager    *cart.Manager
	AuthService    auth.Service
	KantinService  kantins.Service
	OrderService   orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RedisClient, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1/kantins", func(r chi.Router) {
		r.Get("/", controllers.KantinList(deps.KantinService, logg))
		r.Get("/{kantinId}", controllers.KantinDetail(deps.KantinService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartManager, logg))
			r.Delete("/", controllers.CartClear(deps.CartManager, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartManager, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.CartManager, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartManager, logg))
			r.Post("/vendor", controllers.CartSwitchVendor(deps.CartManager, deps.KantinService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.OrderService, logg))
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.OrderService, logg))
		})
	})

	return r
}
