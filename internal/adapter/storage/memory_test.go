package storage

import (
	"testing"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreItems(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := t.Context()

	it := domain.Item{Code: "ABC-123", Name: "Cooler", ManufacturerProductNumber: "abc 123"}
	require.NoError(t, s.CreateItem(ctx, it))

	got, err := s.FindItemByMPN(ctx, "ABC   123")
	require.NoError(t, err)
	assert.Equal(t, "Cooler", got.Name)

	err = s.CreateItem(ctx, domain.Item{Code: "OTHER", ManufacturerProductNumber: "Abc 123"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	it.ManufacturerProductNumber = "abc 124"
	require.NoError(t, s.UpdateItem(ctx, it))
	_, err = s.FindItemByMPN(ctx, "abc 123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.FindItemByMPN(ctx, "ABC-124")
	assert.NoError(t, err)

	err = s.UpdateItem(ctx, domain.Item{Code: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, s.ItemCount())
}

func TestMemoryStoreReferences(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := t.Context()

	ok, err := s.PriceListExists(ctx, "Standard Selling")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ItemGroupExists(ctx, "EGIS")
	require.NoError(t, err)
	assert.True(t, ok)

	err = s.CreateItemGroup(ctx, domain.ItemGroup{Name: "EGIS"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.GetBrand(ctx, "ACME")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, s.CreateBrand(ctx, domain.Brand{Name: "ACME"}))
	assert.ErrorIs(t, s.CreateBrand(ctx, domain.Brand{Name: "ACME"}), ErrAlreadyExists)
}

func TestMemoryStorePrices(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := t.Context()

	p := domain.PriceEntry{
		ItemCode:  "ABC-123",
		PriceList: "Standard Selling",
		Rate:      decimal.RequireFromString("10.50"),
		Currency:  "EUR",
	}
	assert.ErrorIs(t, s.UpsertPrice(ctx, p), domain.ErrNotFound)

	require.NoError(t, s.CreateItem(ctx, domain.Item{Code: "ABC-123", ManufacturerProductNumber: "ABC-123"}))
	require.NoError(t, s.UpsertPrice(ctx, p))

	p.Rate = decimal.RequireFromString("11")
	require.NoError(t, s.UpsertPrice(ctx, p))
	assert.Len(t, s.ListPrices("ABC-123"), 1)

	got, err := s.GetPrice(ctx, "ABC-123", "Standard Selling")
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(11)))

	p.PriceList = "UVP"
	assert.ErrorIs(t, s.UpsertPrice(ctx, p), domain.ErrNotFound)
}

func TestMemoryStoreSalesOrders(t *testing.T) {
	s := NewMemoryStore()
	ctx := t.Context()

	s.AddSalesOrder(domain.SalesOrder{
		ID:     "SO-0001",
		Status: domain.OrderStatusDraft,
		Lines: []domain.SalesOrderLine{
			{Idx: 1, ItemCode: "A", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(5)},
		},
	})

	o, err := s.GetSalesOrder(ctx, "SO-0001")
	require.NoError(t, err)
	o.Lines[0].Rate = decimal.NewFromInt(100)

	require.NoError(t, s.SetLineRate(ctx, "SO-0001", 1, decimal.NewFromInt(7)))
	assert.ErrorIs(t, s.SetLineRate(ctx, "SO-0001", 2, decimal.Zero), domain.ErrNotFound)
	assert.ErrorIs(t, s.SetLineRate(ctx, "SO-0002", 1, decimal.Zero), domain.ErrNotFound)

	o, err = s.GetSalesOrder(ctx, "SO-0001")
	require.NoError(t, err)
	assert.True(t, o.Lines[0].Rate.Equal(decimal.NewFromInt(7)))

	_, err = s.GetSalesOrder(ctx, "SO-0002")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
