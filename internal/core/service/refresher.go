package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

var errPriceNotFound = errors.New("price not found in catalog")

// RefreshPrices re-reads the purchase price of every EGIS line on a draft
// sales order and writes it into the line rate. Lines that fail are left
// untouched and reported. Once started every line is processed even if ctx
// is cancelled.
func (s Service) RefreshPrices(
	ctx context.Context, salesOrderID string,
) (domain.RefreshReport, error) {
	const op = "Service.RefreshPrices"
	log := slog.With("op", op, "salesOrderID", salesOrderID)
	ctx = context.WithoutCancel(ctx)

	order, err := s.orders.GetSalesOrder(ctx, salesOrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RefreshReport{}, fmt.Errorf(
				"%s: %w: %w", op, domain.ErrOrderNotEditable, err,
			)
		}
		return domain.RefreshReport{}, fmt.Errorf("%s: %w", op, err)
	}

	if !order.Editable() {
		return domain.RefreshReport{}, fmt.Errorf(
			"%s: %w: status %q", op, domain.ErrOrderNotEditable, order.Status,
		)
	}

	report := domain.RefreshReport{SalesOrderID: order.ID}

	for _, line := range order.Lines {
		if !line.IsEGISItem {
			report.Skipped++
			continue
		}

		newRate, err := s.refreshLine(ctx, order.ID, line)
		if err != nil {
			log.Warn("failed to refresh line", "itemCode", line.ItemCode, "err", err)
			report.FailedItems = append(report.FailedItems, domain.RefreshFailure{
				ItemCode: line.ItemCode,
				Reason:   failureReason(err),
			})
			continue
		}

		report.UpdatedItems = append(report.UpdatedItems, domain.RateChange{
			ItemCode: line.ItemCode,
			OldRate:  line.Rate,
			NewRate:  newRate,
		})
	}

	log.Info(
		"prices refreshed",
		"updated", len(report.UpdatedItems),
		"failed", len(report.FailedItems),
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s Service) refreshLine(
	ctx context.Context, orderID string, line domain.SalesOrderLine,
) (decimal.Decimal, error) {
	const op = "Service.refreshLine"

	key, err := s.lineProductKey(ctx, line)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.catalog.Lookup(ctx, key)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", op, err)
	}

	if !rec.PurchasePrice.Valid {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", op, errPriceNotFound)
	}

	rate := rec.PurchasePrice.Decimal.Round(rateScale)
	if err := s.orders.SetLineRate(ctx, orderID, line.Idx, rate); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", op, err)
	}
	return rate, nil
}

// lineProductKey returns the catalog identity of the item on the line. An
// item unknown to the store is looked up by its code as the distributor's
// product number.
func (s Service) lineProductKey(
	ctx context.Context, line domain.SalesOrderLine,
) (domain.ProductKey, error) {
	it, err := s.store.GetItem(ctx, line.ItemCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ProductKey{ProprietaryProductNumber: line.ItemCode}, nil
		}
		return domain.ProductKey{}, err
	}
	return domain.ProductKey{
		ProprietaryProductNumber:  it.ProprietaryProductNumber,
		ManufacturerProductNumber: it.ManufacturerProductNumber,
	}, nil
}

func failureReason(err error) string {
	var catalogErr *domain.CatalogError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return domain.ErrProductNotFound.Error()
	case errors.Is(err, domain.ErrAmbiguousMatch):
		return domain.ErrAmbiguousMatch.Error()
	case errors.Is(err, errPriceNotFound):
		return errPriceNotFound.Error()
	case errors.As(err, &catalogErr):
		return catalogErr.Error()
	default:
		return err.Error()
	}
}
