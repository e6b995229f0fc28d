package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bizcenter/marketplace/internal/domain"
	"github.com/bizcenter/marketplace/internal/event"
	"github.com/bizcenter/marketplace/internal/repository"
	apperrors "github.com/bizcenter/marketplace/pkg/errors"
	pkgkafka "github.com/bizcenter/marketplace/pkg/kafka"
)

// --- Mock Shop Repository ---

type mockShopRepository struct {
	mock.Mock
}

func (m *mockShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *mockShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *mockShopRepository) GetForUpdate(ctx context.Context, id string) (*domain.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *mockShopRepository) List(ctx context.Context) ([]domain.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shop), args.Error(1)
}

func (m *mockShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *mockShopRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListByShopID(ctx context.Context, shopID string) ([]domain.Product, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Stub transaction runner ---

// stubStore exposes the mock repositories as a repository.Store.
type stubStore struct {
	shops    repository.ShopRepository
	products repository.ProductRepository
}

func (s stubStore) Shops() repository.ShopRepository       { return s.shops }
func (s stubStore) Products() repository.ProductRepository { return s.products }

// stubTxRunner invokes the callback directly against the mock-backed store.
type stubTxRunner struct {
	store repository.Store
}

func (r stubTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	return fn(ctx, r.store)
}

// --- In-memory store for concurrency tests ---

// memoryStore is a serializing in-memory store: WithinTx holds a mutex for
// the whole callback, mirroring the row-lock serialization of the real store.
type memoryStore struct {
	mu       sync.Mutex
	shops    map[string]domain.Shop
	products map[string]domain.Product
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		shops:    make(map[string]domain.Shop),
		products: make(map[string]domain.Product),
	}
}

func (m *memoryStore) Shops() repository.ShopRepository       { return (*memShopRepo)(m) }
func (m *memoryStore) Products() repository.ProductRepository { return (*memProductRepo)(m) }

func (m *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func cloneShop(s domain.Shop) *domain.Shop {
	out := s
	out.ProductIDs = append([]string{}, s.ProductIDs...)
	out.Reviews = append([]domain.Review{}, s.Reviews...)
	return &out
}

type memShopRepo memoryStore

func (m *memShopRepo) Create(ctx context.Context, shop *domain.Shop) error {
	m.shops[shop.ID] = *cloneShop(*shop)
	return nil
}

func (m *memShopRepo) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	s, ok := m.shops[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneShop(s), nil
}

func (m *memShopRepo) GetForUpdate(ctx context.Context, id string) (*domain.Shop, error) {
	return m.GetByID(ctx, id)
}

func (m *memShopRepo) List(ctx context.Context) ([]domain.Shop, error) {
	out := []domain.Shop{}
	for _, s := range m.shops {
		out = append(out, *cloneShop(s))
	}
	return out, nil
}

func (m *memShopRepo) Update(ctx context.Context, shop *domain.Shop) error {
	if _, ok := m.shops[shop.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.shops[shop.ID] = *cloneShop(*shop)
	return nil
}

func (m *memShopRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.shops[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.shops, id)
	return nil
}

type memProductRepo memoryStore

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *memProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProductRepo) ListByShopID(ctx context.Context, shopID string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer() *event.Producer {
	logger := newTestLogger()
	// Kafka producer pointed at no broker; publish failures are swallowed
	// by the services.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }

func testShop(ownerID string) *domain.Shop {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Shop{
		ID:          "shop-1",
		Name:        "Corner Store",
		Description: "Neighborhood essentials",
		ImageURL:    "https://cdn.example.com/corner.jpg",
		OwnerID:     ownerID,
		ProductIDs:  []string{},
		Reviews:     []domain.Review{},
		Rating:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testProduct(shopID string) *domain.Product {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:          "prod-1",
		ShopID:      shopID,
		Name:        "Widget",
		Description: "A fine widget",
		Category:    "gadgets",
		ImageURL:    "https://cdn.example.com/widget.jpg",
		Price:       19.99,
		Stock:       12,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
