package egis

import (
	"slices"
	"strings"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

// filterByPrice drops the records outside the filter's price bounds. The
// catalog total no longer applies afterwards, so it is replaced by the
// number of kept records.
func filterByPrice(f domain.SearchFilter, res domain.SearchResult) domain.SearchResult {
	kept := make([]domain.ProductRecord, 0, len(res.Records))
	for _, r := range res.Records {
		if f.InPriceBounds(r.PurchasePrice) {
			kept = append(kept, r)
		}
	}
	res.Records = kept
	res.Total = len(kept)
	return res
}

// sortRecords orders records in place. Records without a price go last.
func sortRecords(rs []domain.ProductRecord, order domain.SortOrder) {
	switch order {
	case domain.SortPriceAsc:
		slices.SortStableFunc(rs, func(a, b domain.ProductRecord) int {
			return comparePrice(a.PurchasePrice, b.PurchasePrice, false)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(rs, func(a, b domain.ProductRecord) int {
			return comparePrice(a.PurchasePrice, b.PurchasePrice, true)
		})
	case domain.SortDescription:
		slices.SortStableFunc(rs, func(a, b domain.ProductRecord) int {
			return strings.Compare(
				strings.ToLower(a.Description), strings.ToLower(b.Description),
			)
		})
	}
}

func comparePrice(a, b decimal.NullDecimal, desc bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	if desc {
		return b.Decimal.Cmp(a.Decimal)
	}
	return a.Decimal.Cmp(b.Decimal)
}
