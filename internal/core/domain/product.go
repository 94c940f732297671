package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type (
	// A ProductRecord is one catalog row as returned by the distributor.
	// It lives only between search and import.
	ProductRecord struct {
		ProprietaryProductNumber  string
		Description               string
		ManufacturerID            string
		ManufacturerName          string
		ManufacturerProductNumber string
		GlobalProductNumber       string
		ProductGroupID            string

		PurchasePrice          decimal.NullDecimal
		RecommendedRetailPrice decimal.NullDecimal
		Currency               string
		PriceTimestamp         time.Time

		ImageURL string

		ExistsLocally bool
	}

	// A ProductKey identifies a single catalog product for a direct lookup.
	ProductKey struct {
		ProprietaryProductNumber  string
		ManufacturerProductNumber string
	}

	SearchResult struct {
		Records     []ProductRecord
		Total       int
		FirstResult int
		LastResult  int
	}
)

func (r ProductRecord) Key() ProductKey {
	return ProductKey{
		ProprietaryProductNumber:  r.ProprietaryProductNumber,
		ManufacturerProductNumber: r.ManufacturerProductNumber,
	}
}

// ItemCode derives the local item code from a manufacturer product number.
func ItemCode(mpn string) string {
	fields := strings.FieldsFunc(mpn, unicode.IsSpace)
	return strings.ToUpper(strings.Join(fields, "-"))
}
