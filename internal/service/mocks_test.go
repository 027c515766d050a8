package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/storage"
)

// --- Mock ProductRepository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListActive(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Counts(ctx context.Context) (domain.ProductCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ProductCounts), args.Error(1)
}

// --- Mock OrderRepository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) CreateItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

// --- Mock CartRepository ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock WishlistRepository ---

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Get(ctx context.Context, sessionID string) (domain.Wishlist, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Save(ctx context.Context, sessionID string, w domain.Wishlist) error {
	args := m.Called(ctx, sessionID, w)
	return args.Error(0)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock StatsRepository ---

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) RecordOrder(ctx context.Context, total decimal.Decimal, email string, at time.Time) error {
	args := m.Called(ctx, total, email, at)
	return args.Error(0)
}

func (m *mockStatsRepository) Totals(ctx context.Context) (domain.SalesTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SalesTotals), args.Error(1)
}

// --- Mock events (satisfies every *Events interface) ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *mockEvents) PublishWishlistUpdated(ctx context.Context, sessionID string, w domain.Wishlist) error {
	args := m.Called(ctx, sessionID, w)
	return args.Error(0)
}

func (m *mockEvents) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockEvents) PublishProductCreated(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockEvents) PublishProductUpdated(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockEvents) PublishProductDeleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Storage ---

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *mockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}

// decEq matches a decimal argument by value.
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
