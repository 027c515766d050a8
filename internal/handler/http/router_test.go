package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/apparelstore/internal/auth"
	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/event"
	redisrepo "github.com/utafrali/apparelstore/internal/repository/redis"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/internal/storage/memory"
	"github.com/utafrali/apparelstore/pkg/health"
	"github.com/utafrali/apparelstore/pkg/middleware"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) ListActive(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Counts(ctx context.Context) (domain.ProductCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ProductCounts), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) CreateItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

// =============================================================================
// Test harness
// =============================================================================

const (
	testSession       = "sess-handler-0001"
	testAdminEmail    = "admin@apparel.test"
	testAdminPassword = "correct horse battery"
	testJWTSecret     = "handler-test-secret-handler-test-secret"
)

type testServer struct {
	handler  http.Handler
	products *mockProductRepo
	orders   *mockOrderRepo
	stats    *redisrepo.StatsRepository
	storage  *memory.Storage
	tokens   *auth.JWTManager
	redis    *miniredis.Miniredis
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName:    "apparelstore-test",
		CORS:           middleware.CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
		CatalogMaxAge:  60,
		MaxUploadBytes: 1 << 10,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestServer(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := testLogger()
	events := event.NewProducer(nil, logger)

	products := new(mockProductRepo)
	orders := new(mockOrderRepo)
	carts := redisrepo.NewCartRepository(client, time.Hour)
	wishlists := redisrepo.NewWishlistRepository(client, time.Hour)
	stats := redisrepo.NewStatsRepository(client)
	store := memory.New("http://media.test")
	cfg.Media = store

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	tokens := auth.NewJWTManager(testJWTSecret, time.Hour)

	svcs := Services{
		Catalog:  service.NewCatalogService(products, logger),
		Cart:     service.NewCartService(carts, events, logger),
		Wishlist: service.NewWishlistService(wishlists, events, logger),
		Checkout: service.NewCheckoutService(orders, carts, events, logger),
		Products: service.NewProductService(products, events, logger),
		Uploads:  service.NewUploadService(store, cfg.MaxUploadBytes, logger),
		Orders:   service.NewOrderService(orders, logger),
		Stats:    service.NewStatsService(stats, products, logger),
		Auth:     service.NewAuthService(testAdminEmail, hash, tokens, logger),
	}

	return &testServer{
		handler:  NewRouter(svcs, tokens.Validator(), health.NewHandler("apparelstore-test"), cfg, logger),
		products: products,
		orders:   orders,
		stats:    stats,
		storage:  store,
		tokens:   tokens,
		redis:    mr,
	}
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.GenerateToken("admin", testAdminEmail, auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withSession(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.SessionHeader, id) }
}

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
	return env
}
