package service_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/niksmo/egis-bridge/internal/adapter/storage"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/niksmo/egis-bridge/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (c *MockCatalog) Search(
	ctx context.Context, f domain.SearchFilter, startRow int,
) (domain.SearchResult, error) {
	args := c.Called(ctx, f, startRow)
	return args.Get(0).(domain.SearchResult), args.Error(1)
}

func (c *MockCatalog) Lookup(
	ctx context.Context, key domain.ProductKey,
) (domain.ProductRecord, error) {
	args := c.Called(ctx, key)
	return args.Get(0).(domain.ProductRecord), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (e *MockEvents) ProduceImported(
	ctx context.Context, m domain.ImportMapping, r domain.ImportReport,
) error {
	args := e.Called(ctx, m, r)
	return args.Error(0)
}

func (e *MockEvents) Close() {
	e.Called()
}

// countingStore counts every write that reaches the store.
type countingStore struct {
	*storage.MemoryStore
	writes atomic.Int64
}

func (s *countingStore) CreateItem(ctx context.Context, it domain.Item) error {
	s.writes.Add(1)
	return s.MemoryStore.CreateItem(ctx, it)
}

func (s *countingStore) UpdateItem(ctx context.Context, it domain.Item) error {
	s.writes.Add(1)
	return s.MemoryStore.UpdateItem(ctx, it)
}

func (s *countingStore) CreateBrand(ctx context.Context, b domain.Brand) error {
	s.writes.Add(1)
	return s.MemoryStore.CreateBrand(ctx, b)
}

func (s *countingStore) CreateItemGroup(ctx context.Context, g domain.ItemGroup) error {
	s.writes.Add(1)
	return s.MemoryStore.CreateItemGroup(ctx, g)
}

func (s *countingStore) UpsertPrice(ctx context.Context, p domain.PriceEntry) error {
	s.writes.Add(1)
	return s.MemoryStore.UpsertPrice(ctx, p)
}

// cancellingStore cancels the caller's context after the first item is
// created.
type cancellingStore struct {
	*storage.MemoryStore
	cancel context.CancelFunc
}

func (s *cancellingStore) CreateItem(ctx context.Context, it domain.Item) error {
	defer s.cancel()
	return s.MemoryStore.CreateItem(ctx, it)
}

var defaultSettings = domain.MappingSettings{
	SellingPriceList: "Standard Selling",
	ItemGroup:        "EGIS",
}

type fixture struct {
	catalog *MockCatalog
	store   *storage.MemoryStore
	svc     service.Service
}

func newFixture(
	t *testing.T, settings domain.MappingSettings, events port.ImportEventsProducer,
) fixture {
	t.Helper()
	f := fixture{
		catalog: new(MockCatalog),
		store:   storage.NewSeededMemoryStore(),
	}
	f.svc = service.New(f.catalog, f.store, f.store, events, settings)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func record(mpn, purchase string) domain.ProductRecord {
	return domain.ProductRecord{
		ProprietaryProductNumber:  "P-" + mpn,
		Description:               "Product " + mpn,
		ManufacturerName:          "ACME",
		ManufacturerID:            "M-1",
		ManufacturerProductNumber: mpn,
		PurchasePrice:             price(purchase),
		Currency:                  "EUR",
	}
}
