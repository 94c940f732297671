package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CatalogStore = (*MemoryStore)(nil)
var _ port.SalesOrderStore = (*MemoryStore)(nil)

type priceKey struct {
	itemCode  string
	priceList string
}

type MemoryStore struct {
	mu sync.RWMutex

	items      map[string]domain.Item // code -> item
	mpnIndex   map[string]string      // normalized mpn -> code
	brands     map[string]domain.Brand
	itemGroups map[string]domain.ItemGroup
	priceLists map[string]domain.PriceList
	prices     map[priceKey]domain.PriceEntry
	orders     map[string]domain.SalesOrder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]domain.Item),
		mpnIndex:   make(map[string]string),
		brands:     make(map[string]domain.Brand),
		itemGroups: make(map[string]domain.ItemGroup),
		priceLists: make(map[string]domain.PriceList),
		prices:     make(map[priceKey]domain.PriceEntry),
		orders:     make(map[string]domain.SalesOrder),
	}
}

// NewSeededMemoryStore returns a store holding the same reference records
// the SQL migrations seed.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	for _, pl := range defaultPriceLists {
		s.AddPriceList(pl)
	}
	for _, g := range defaultItemGroups {
		s.AddItemGroup(g)
	}
	return s
}

func (s *MemoryStore) AddPriceList(pl domain.PriceList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceLists[pl.Name] = pl
}

func (s *MemoryStore) AddItemGroup(g domain.ItemGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemGroups[g.Name] = g
}

func (s *MemoryStore) AddSalesOrder(o domain.SalesOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *MemoryStore) FindItemByMPN(
	ctx context.Context, mpn string,
) (domain.Item, error) {
	const op = "MemoryStore.FindItemByMPN"
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.mpnIndex[domain.ItemCode(mpn)]
	if !ok {
		return domain.Item{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return s.items[code], nil
}

func (s *MemoryStore) GetItem(
	ctx context.Context, code string,
) (domain.Item, error) {
	const op = "MemoryStore.GetItem"
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[code]
	if !ok {
		return domain.Item{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return it, nil
}

func (s *MemoryStore) CreateItem(ctx context.Context, it domain.Item) error {
	const op = "MemoryStore.CreateItem"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[it.Code]; ok {
		return fmt.Errorf("%s: %w: item %q", op, ErrAlreadyExists, it.Code)
	}
	mpnKey := domain.ItemCode(it.ManufacturerProductNumber)
	if _, ok := s.mpnIndex[mpnKey]; ok && mpnKey != "" {
		return fmt.Errorf("%s: %w: mpn %q", op, ErrAlreadyExists, mpnKey)
	}

	s.items[it.Code] = it
	if mpnKey != "" {
		s.mpnIndex[mpnKey] = it.Code
	}
	return nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, it domain.Item) error {
	const op = "MemoryStore.UpdateItem"
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[it.Code]
	if !ok {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	delete(s.mpnIndex, domain.ItemCode(prev.ManufacturerProductNumber))
	s.items[it.Code] = it
	if mpnKey := domain.ItemCode(it.ManufacturerProductNumber); mpnKey != "" {
		s.mpnIndex[mpnKey] = it.Code
	}
	return nil
}

func (s *MemoryStore) GetBrand(
	ctx context.Context, name string,
) (domain.Brand, error) {
	const op = "MemoryStore.GetBrand"
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brands[name]
	if !ok {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return b, nil
}

func (s *MemoryStore) CreateBrand(ctx context.Context, b domain.Brand) error {
	const op = "MemoryStore.CreateBrand"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[b.Name]; ok {
		return fmt.Errorf("%s: %w: brand %q", op, ErrAlreadyExists, b.Name)
	}
	s.brands[b.Name] = b
	return nil
}

func (s *MemoryStore) ItemGroupExists(
	ctx context.Context, name string,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.itemGroups[name]
	return ok, nil
}

func (s *MemoryStore) CreateItemGroup(
	ctx context.Context, g domain.ItemGroup,
) error {
	const op = "MemoryStore.CreateItemGroup"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.itemGroups[g.Name]; ok {
		return fmt.Errorf("%s: %w: item group %q", op, ErrAlreadyExists, g.Name)
	}
	s.itemGroups[g.Name] = g
	return nil
}

func (s *MemoryStore) PriceListExists(
	ctx context.Context, name string,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.priceLists[name]
	return ok, nil
}

func (s *MemoryStore) GetPrice(
	ctx context.Context, itemCode, priceList string,
) (domain.PriceEntry, error) {
	const op = "MemoryStore.GetPrice"
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prices[priceKey{itemCode, priceList}]
	if !ok {
		return domain.PriceEntry{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) UpsertPrice(ctx context.Context, p domain.PriceEntry) error {
	const op = "MemoryStore.UpsertPrice"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[p.ItemCode]; !ok {
		return fmt.Errorf("%s: item %q: %w", op, p.ItemCode, domain.ErrNotFound)
	}
	if _, ok := s.priceLists[p.PriceList]; !ok {
		return fmt.Errorf("%s: price list %q: %w", op, p.PriceList, domain.ErrNotFound)
	}
	s.prices[priceKey{p.ItemCode, p.PriceList}] = p
	return nil
}

// ListPrices returns every price entry of the item.
func (s *MemoryStore) ListPrices(itemCode string) []domain.PriceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.PriceEntry
	for k, p := range s.prices {
		if k.itemCode == itemCode {
			out = append(out, p)
		}
	}
	return out
}

func (s *MemoryStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) GetSalesOrder(
	ctx context.Context, id string,
) (domain.SalesOrder, error) {
	const op = "MemoryStore.GetSalesOrder"
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) SetLineRate(
	ctx context.Context, orderID string, idx int, rate decimal.Decimal,
) error {
	const op = "MemoryStore.SetLineRate"
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	for i := range o.Lines {
		if o.Lines[i].Idx == idx {
			o.Lines[i].Rate = rate
			return nil
		}
	}
	return fmt.Errorf("%s: line %d: %w", op, idx, domain.ErrNotFound)
}

func cloneOrder(o domain.SalesOrder) domain.SalesOrder {
	lines := make([]domain.SalesOrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}
