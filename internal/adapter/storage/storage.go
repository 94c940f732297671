package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyExists  = errors.New("already exists")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Reference records every fresh store starts with. The SQL migrations seed
// the same rows.
var (
	defaultPriceLists = []domain.PriceList{
		{Name: "Standard Selling", Currency: "EUR", Selling: true},
		{Name: "Standard Buying", Currency: "EUR", Buying: true},
	}

	defaultItemGroups = []domain.ItemGroup{
		{Name: "All Item Groups"},
		{Name: "EGIS", Parent: "All Item Groups"},
	}
)

// DemoSalesOrderID names the draft order the memory backend starts with.
// Sales orders are owned by the ERP, the in-memory store has no other way
// to get one.
const DemoSalesOrderID = "SO-DEMO-0001"

func demoSalesOrder() domain.SalesOrder {
	return domain.SalesOrder{
		ID:       DemoSalesOrderID,
		Customer: "Demo Customer",
		Status:   domain.OrderStatusDraft,
		Currency: "EUR",
		Lines: []domain.SalesOrderLine{
			{Idx: 1, ItemCode: "1001", Qty: decimal.NewFromInt(1), IsEGISItem: true},
			{Idx: 2, ItemCode: "SERVICE", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(50)},
		},
	}
}

// Stores bundles the record stores of one backend.
type Stores struct {
	Catalog port.CatalogStore
	Orders  port.SalesOrderStore
	db      *SQLDB
}

func Open(ctx context.Context, backend, dsn string) (Stores, error) {
	const op = "storage.Open"

	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		slog.Info("using in-memory storage", "op", op, "demoSalesOrder", DemoSalesOrderID)
		s := NewSeededMemoryStore()
		s.AddSalesOrder(demoSalesOrder())
		return Stores{Catalog: s, Orders: s}, nil

	case BackendPostgres, BackendMySQL:
		if strings.TrimSpace(dsn) == "" {
			return Stores{}, fmt.Errorf("%s: dsn is required for %s", op, backend)
		}

		db, err := NewSQLDB(ctx, backend, dsn)
		if err != nil {
			return Stores{}, fmt.Errorf("%s: %w", op, err)
		}

		s := NewSQLStore(db)
		return Stores{Catalog: s, Orders: s, db: &db}, nil

	default:
		return Stores{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownBackend, backend)
	}
}

func (s Stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
