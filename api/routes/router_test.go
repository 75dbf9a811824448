package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/webcraft-id/kantinku-backend/internal/auth"
	"github.com/webcraft-id/kantinku-backend/internal/cart"
	"github.com/webcraft-id/kantinku-backend/internal/cartstore"
	"github.com/webcraft-id/kantinku-backend/internal/kantins"
	"github.com/webcraft-id/kantinku-backend/internal/orders"
	pkgAuth "github.com/webcraft-id/kantinku-backend/pkg/auth"
	"github.com/webcraft-id/kantinku-backend/pkg/auth/session"
	"github.com/webcraft-id/kantinku-backend/pkg/config"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessionChecker struct{ ok bool }

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) Logout(ctx context.Context, accessID string, userID uuid.UUID) error {
	return nil
}

type stubKantinService struct{}

func (stubKantinService) ListKantins(ctx context.Context) ([]kantins.KantinDTO, error) {
	return []kantins.KantinDTO{{ID: 1, Name: "Warung Bu Tini"}}, nil
}

func (stubKantinService) GetKantin(ctx context.Context, id uint) (*kantins.KantinDetailDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kantin not found")
}

type stubOrderService struct{}

func (stubOrderService) CreateFromCart(ctx context.Context, userID uuid.UUID, req *orders.SubmitOrderRequest) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: 1}, nil
}

func (stubOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrderService) GetOrder(ctx context.Context, id uint, userID uuid.UUID) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	manager, err := cart.NewManager(cart.ManagerParams{
		Stores:   cartstore.NewMemoryFactory(),
		Logger:   logg,
		Debounce: time.Hour,
	})
	if err != nil {
		t.Fatalf("new cart manager: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = manager.Close(ctx)
	})

	return NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		DBPinger:       stubPinger{},
		RedisClient:    nil,
		SessionManager: stubSessionChecker{ok: true},
		CartManager:    manager,
		AuthService:    stubAuthService{},
		KantinService:  stubKantinService{},
		OrderService:   stubOrderService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Budi",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestKantinListIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/kantins", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed cart got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestRegisterAcceptsGoodJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := `{"name":"Zed","email":"zed@example.com","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid payload got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
