package port

import (
	"context"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	closer interface {
		Close()
	}
)

// Inbound ports, used by the command layer.

type ProductSearcher interface {
	Search(
		ctx context.Context, f domain.SearchFilter, startRow int,
	) (domain.SearchResult, error)
}

type MappingResolver interface {
	ResolveMapping(context.Context) (domain.ImportMapping, error)
}

type ItemImporter interface {
	Import(
		ctx context.Context, rs []domain.ProductRecord, m domain.ImportMapping,
	) domain.ImportReport
}

type PriceRefresher interface {
	RefreshPrices(
		ctx context.Context, salesOrderID string,
	) (domain.RefreshReport, error)
}

// Outbound ports.

type CatalogClient interface {
	Search(
		ctx context.Context, f domain.SearchFilter, startRow int,
	) (domain.SearchResult, error)
	Lookup(
		ctx context.Context, key domain.ProductKey,
	) (domain.ProductRecord, error)
}

// A CatalogStore holds the local item and price records.
//
// Getters return an error wrapping [domain.ErrNotFound] for missing records.
type CatalogStore interface {
	FindItemByMPN(ctx context.Context, mpn string) (domain.Item, error)
	GetItem(ctx context.Context, code string) (domain.Item, error)
	CreateItem(ctx context.Context, it domain.Item) error
	UpdateItem(ctx context.Context, it domain.Item) error

	GetBrand(ctx context.Context, name string) (domain.Brand, error)
	CreateBrand(ctx context.Context, b domain.Brand) error

	ItemGroupExists(ctx context.Context, name string) (bool, error)
	CreateItemGroup(ctx context.Context, g domain.ItemGroup) error

	PriceListExists(ctx context.Context, name string) (bool, error)

	GetPrice(
		ctx context.Context, itemCode, priceList string,
	) (domain.PriceEntry, error)
	UpsertPrice(ctx context.Context, p domain.PriceEntry) error
}

type SalesOrderStore interface {
	GetSalesOrder(ctx context.Context, id string) (domain.SalesOrder, error)
	SetLineRate(
		ctx context.Context, orderID string, idx int, rate decimal.Decimal,
	) error
}

// An ImportEventsProducer announces the successful outcomes of an import.
type ImportEventsProducer interface {
	ProduceImported(
		ctx context.Context, m domain.ImportMapping, r domain.ImportReport,
	) error
	closer
}
