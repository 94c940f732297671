package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/egis-bridge/internal/core/domain"
)

// ResolveMapping checks the configured price lists and item group against
// the store and returns them as an [domain.ImportMapping].
func (s Service) ResolveMapping(
	ctx context.Context,
) (domain.ImportMapping, error) {
	const op = "Service.ResolveMapping"

	if err := ctx.Err(); err != nil {
		return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
	}

	m := domain.ImportMapping{
		SellingPriceList:    strings.TrimSpace(s.settings.SellingPriceList),
		RetailPriceList:     strings.TrimSpace(s.settings.RetailPriceList),
		ItemGroup:           strings.TrimSpace(s.settings.ItemGroup),
		GroupByProductGroup: s.settings.GroupByProductGroup,
	}

	if m.SellingPriceList == "" {
		err := &domain.MissingConfigurationError{Field: "selling_price_list"}
		return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
	}

	if m.ItemGroup == "" {
		err := &domain.MissingConfigurationError{Field: "item_group"}
		return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
	}

	priceLists := []string{m.SellingPriceList}
	if m.HasRetailPriceList() {
		priceLists = append(priceLists, m.RetailPriceList)
	}

	for _, name := range priceLists {
		ok, err := s.store.PriceListExists(ctx, name)
		if err != nil {
			return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			err := &domain.ReferenceNotFoundError{Kind: "price list", Name: name}
			return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	ok, err := s.store.ItemGroupExists(ctx, m.ItemGroup)
	if err != nil {
		return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		err := &domain.ReferenceNotFoundError{Kind: "item group", Name: m.ItemGroup}
		return domain.ImportMapping{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}
