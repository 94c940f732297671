package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const minTermLen = 2

type SortOrder string

const (
	SortRelevance   SortOrder = ""
	SortPriceAsc    SortOrder = "price_asc"
	SortPriceDesc   SortOrder = "price_desc"
	SortDescription SortOrder = "description"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortDescription:
		return true
	}
	return false
}

type SearchFilter struct {
	Term              string
	OnlyActive        bool
	OnlyStocked       bool
	OnlyInDescription bool
	MinPrice          decimal.NullDecimal
	MaxPrice          decimal.NullDecimal
	Sort              SortOrder
	Distributors      []string
	Manufacturers     []string
	ProductGroups     []string
}

// Validate reports whether the filter may be sent to the catalog.
//
// A term of at least two characters is required unless the search is
// narrowed to exactly one product group.
func (f SearchFilter) Validate() error {
	term := strings.TrimSpace(f.Term)
	if utf8.RuneCountInString(term) < minTermLen && len(f.ProductGroups) != 1 {
		return &ValidationError{
			Field:   "term",
			Message: "must be at least 2 characters unless exactly one product group is given",
		}
	}

	if f.MinPrice.Valid && f.MinPrice.Decimal.IsNegative() {
		return &ValidationError{Field: "min_price", Message: "must not be negative"}
	}

	if f.MaxPrice.Valid && f.MaxPrice.Decimal.IsNegative() {
		return &ValidationError{Field: "max_price", Message: "must not be negative"}
	}

	if f.MinPrice.Valid && f.MaxPrice.Valid &&
		f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		return &ValidationError{Field: "min_price", Message: "greater than max_price"}
	}

	if !f.Sort.Valid() {
		return &ValidationError{Field: "sort", Message: "unknown sort order"}
	}

	return nil
}

func (f SearchFilter) HasPriceBounds() bool {
	return f.MinPrice.Valid || f.MaxPrice.Valid
}

// InPriceBounds reports whether price lies within the inclusive bounds.
// An absent price never matches a bounded filter.
func (f SearchFilter) InPriceBounds(price decimal.NullDecimal) bool {
	if !f.HasPriceBounds() {
		return true
	}
	if !price.Valid {
		return false
	}
	if f.MinPrice.Valid && price.Decimal.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && price.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	return true
}

// SplitList turns comma separated input into a set of trimmed values.
// Order of first occurrence is kept.
func SplitList(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
