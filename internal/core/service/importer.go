package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

// rateScale is the number of decimal places price rates are stored with.
const rateScale = 4

// maxNameLen is the storage limit of an item name in runes.
const maxNameLen = 140

var (
	errMissingMPN           = errors.New("missing manufacturer product number")
	errMissingPurchasePrice = errors.New("missing purchase price")
	errNegativePrice        = errors.New("negative price")
)

// Import upserts the selected records in order. A failing record is
// reported and never stops the records after it. Once started the import
// runs to completion even if ctx is cancelled.
func (s Service) Import(
	ctx context.Context, rs []domain.ProductRecord, m domain.ImportMapping,
) domain.ImportReport {
	const op = "Service.Import"
	log := slog.With("op", op)
	ctx = context.WithoutCancel(ctx)

	report := domain.ImportReport{
		ID:    uuid.NewString(),
		Items: make([]domain.ImportOutcome, 0, len(rs)),
	}

	for i, r := range rs {
		o := s.importRecord(ctx, i, r, m)
		if o.Status == domain.ImportStatusFailed {
			log.Warn(
				"failed to import record",
				"index", i, "mpn", r.ManufacturerProductNumber, "reason", o.Reason,
			)
		}
		report.Add(o)
	}

	s.publishImported(ctx, m, report)

	log.Info(
		"import completed",
		"reportID", report.ID,
		"imported", report.Imported,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	return report
}

func (s Service) importRecord(
	ctx context.Context, idx int, r domain.ProductRecord, m domain.ImportMapping,
) domain.ImportOutcome {
	o := domain.ImportOutcome{
		Index:                     idx,
		ItemCode:                  domain.ItemCode(r.ManufacturerProductNumber),
		ManufacturerProductNumber: r.ManufacturerProductNumber,
		Currency:                  r.Currency,
	}

	fail := func(err error) domain.ImportOutcome {
		o.Status = domain.ImportStatusFailed
		o.Reason = err.Error()
		return o
	}

	if err := validateRecord(r); err != nil {
		return fail(err)
	}

	unlock := s.locks.lock(o.ItemCode)
	defer unlock()

	item, created, err := s.upsertItem(ctx, r, m)
	if err != nil {
		return fail(err)
	}
	o.ItemCode = item.Code

	o.SellingRate = r.PurchasePrice.Decimal.Round(rateScale)
	err = s.upsertPrice(ctx, item.Code, m.SellingPriceList, o.SellingRate, r.Currency)
	if err != nil {
		return fail(err)
	}

	if m.HasRetailPriceList() && r.RecommendedRetailPrice.Valid {
		o.RetailRate = decimal.NewNullDecimal(
			r.RecommendedRetailPrice.Decimal.Round(rateScale),
		)
		err = s.upsertPrice(
			ctx, item.Code, m.RetailPriceList, o.RetailRate.Decimal, r.Currency,
		)
		if err != nil {
			return fail(err)
		}
	}

	o.Status = domain.ImportStatusUpdated
	if created {
		o.Status = domain.ImportStatusImported
	}
	return o
}

func validateRecord(r domain.ProductRecord) error {
	if domain.ItemCode(r.ManufacturerProductNumber) == "" {
		return errMissingMPN
	}
	if !r.PurchasePrice.Valid {
		return errMissingPurchasePrice
	}
	if r.PurchasePrice.Decimal.IsNegative() {
		return fmt.Errorf("purchase price: %w", errNegativePrice)
	}
	if r.RecommendedRetailPrice.Valid && r.RecommendedRetailPrice.Decimal.IsNegative() {
		return fmt.Errorf("recommended retail price: %w", errNegativePrice)
	}
	return nil
}

// upsertItem resolves the item by manufacturer product number and creates
// or merges it. created reports whether a new item was written.
func (s Service) upsertItem(
	ctx context.Context, r domain.ProductRecord, m domain.ImportMapping,
) (it domain.Item, created bool, err error) {
	const op = "Service.upsertItem"

	existing, found, err := s.findItem(ctx, r.ManufacturerProductNumber)
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
	}

	brand, err := s.ensureBrand(ctx, r)
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if found {
		it = existing
		if mergeItem(&it, r, brand) {
			it.UpdatedAt = s.now()
			if err := s.store.UpdateItem(ctx, it); err != nil {
				return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
			}
		}
		return it, false, nil
	}

	group, err := s.itemGroupFor(ctx, r, m)
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	it = domain.Item{
		Code:                      domain.ItemCode(r.ManufacturerProductNumber),
		Name:                      itemName(r),
		Description:               r.Description,
		ItemGroup:                 group,
		Brand:                     brand,
		ManufacturerProductNumber: strings.TrimSpace(r.ManufacturerProductNumber),
		ProprietaryProductNumber:  r.ProprietaryProductNumber,
		GlobalProductNumber:       r.GlobalProductNumber,
		ProductGroupID:            r.ProductGroupID,
		ImageURL:                  r.ImageURL,
		Currency:                  r.Currency,
		IsEGISItem:                true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return domain.Item{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return it, true, nil
}

// mergeItem copies the fields the importer owns from r into it and reports
// whether anything changed. Empty incoming values never clear a field.
func mergeItem(it *domain.Item, r domain.ProductRecord, brand string) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}

	set(&it.Name, itemName(r))
	set(&it.Description, r.Description)
	set(&it.ProprietaryProductNumber, r.ProprietaryProductNumber)
	set(&it.GlobalProductNumber, r.GlobalProductNumber)
	set(&it.ProductGroupID, r.ProductGroupID)
	set(&it.Brand, brand)
	set(&it.ImageURL, r.ImageURL)
	set(&it.Currency, r.Currency)
	return changed
}

// itemName is the description cut to maxNameLen runes, the full text stays
// in the item description.
func itemName(r domain.ProductRecord) string {
	name := strings.TrimSpace(r.Description)
	if name == "" {
		name = strings.TrimSpace(r.ManufacturerProductNumber)
	}
	if utf8.RuneCountInString(name) <= maxNameLen {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:maxNameLen]))
}

// ensureBrand looks up the manufacturer brand and creates it when missing.
func (s Service) ensureBrand(
	ctx context.Context, r domain.ProductRecord,
) (string, error) {
	const op = "Service.ensureBrand"

	name := strings.TrimSpace(r.ManufacturerName)
	if name == "" {
		return "", nil
	}

	_, err := s.store.GetBrand(ctx, name)
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	b := domain.Brand{Name: name, ManufacturerID: r.ManufacturerID}
	if err := s.store.CreateBrand(ctx, b); err != nil {
		// another import of the same brand may have won the race
		if _, getErr := s.store.GetBrand(ctx, name); getErr == nil {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

func (s Service) itemGroupFor(
	ctx context.Context, r domain.ProductRecord, m domain.ImportMapping,
) (string, error) {
	const op = "Service.itemGroupFor"

	name := strings.TrimSpace(r.ProductGroupID)
	if !m.GroupByProductGroup || name == "" {
		return m.ItemGroup, nil
	}

	ok, err := s.store.ItemGroupExists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		return name, nil
	}

	g := domain.ItemGroup{Name: name, Parent: m.ItemGroup}
	if err := s.store.CreateItemGroup(ctx, g); err != nil {
		if ok, _ := s.store.ItemGroupExists(ctx, name); ok {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// upsertPrice writes the rate for (itemCode, priceList) unless the stored
// entry already carries it.
func (s Service) upsertPrice(
	ctx context.Context,
	itemCode, priceList string,
	rate decimal.Decimal,
	currency string,
) error {
	const op = "Service.upsertPrice"

	cur, err := s.store.GetPrice(ctx, itemCode, priceList)
	switch {
	case err == nil:
		if cur.Rate.Equal(rate) && cur.Currency == currency {
			return nil
		}
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	p := domain.PriceEntry{
		ItemCode:  itemCode,
		PriceList: priceList,
		Rate:      rate,
		Currency:  currency,
		UpdatedAt: s.now(),
	}
	if err := s.store.UpsertPrice(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) publishImported(
	ctx context.Context, m domain.ImportMapping, report domain.ImportReport,
) {
	const op = "Service.publishImported"
	log := slog.With("op", op)

	if s.events == nil {
		return
	}

	if len(report.Succeeded()) == 0 {
		return
	}

	if err := s.events.ProduceImported(ctx, m, report); err != nil {
		log.Error("failed to publish import events", "err", err, "reportID", report.ID)
	}
}
