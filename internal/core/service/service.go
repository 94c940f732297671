package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
)

var _ port.ProductSearcher = (*Service)(nil)
var _ port.MappingResolver = (*Service)(nil)
var _ port.ItemImporter = (*Service)(nil)
var _ port.PriceRefresher = (*Service)(nil)

type Service struct {
	catalog  port.CatalogClient
	store    port.CatalogStore
	orders   port.SalesOrderStore
	events   port.ImportEventsProducer
	settings domain.MappingSettings
	locks    *keyLock
	now      func() time.Time
}

// New returns the core service. The events producer is optional and may be
// nil.
func New(
	catalog port.CatalogClient,
	store port.CatalogStore,
	orders port.SalesOrderStore,
	events port.ImportEventsProducer,
	settings domain.MappingSettings,
) Service {
	return Service{
		catalog:  catalog,
		store:    store,
		orders:   orders,
		events:   events,
		settings: settings,
		locks:    newKeyLock(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s Service) Close() {
	if s.events != nil {
		s.events.Close()
	}
}

// findItem is the single lookup by business key shared by the result
// matcher and the importer.
func (s Service) findItem(
	ctx context.Context, mpn string,
) (domain.Item, bool, error) {
	const op = "Service.findItem"

	it, err := s.store.FindItemByMPN(ctx, mpn)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Item{}, false, nil
		}
		return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return it, true, nil
}
