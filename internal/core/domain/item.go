package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	Item struct {
		Code                      string
		Name                      string
		Description               string
		ItemGroup                 string
		Brand                     string
		ManufacturerProductNumber string
		ProprietaryProductNumber  string
		GlobalProductNumber       string
		ProductGroupID            string
		ImageURL                  string
		Currency                  string
		IsEGISItem                bool
		CreatedAt                 time.Time
		UpdatedAt                 time.Time
	}

	Brand struct {
		Name           string
		ManufacturerID string
	}

	ItemGroup struct {
		Name   string
		Parent string
	}

	PriceList struct {
		Name     string
		Currency string
		Buying   bool
		Selling  bool
	}

	PriceEntry struct {
		ItemCode  string
		PriceList string
		Rate      decimal.Decimal
		Currency  string
		UpdatedAt time.Time
	}
)

// MappingSettings are the raw configured names, not yet checked against
// the store.
type MappingSettings struct {
	SellingPriceList    string
	RetailPriceList     string
	ItemGroup           string
	GroupByProductGroup bool
}

// An ImportMapping is a validated [MappingSettings].
type ImportMapping struct {
	SellingPriceList    string
	RetailPriceList     string
	ItemGroup           string
	GroupByProductGroup bool
}

func (m ImportMapping) HasRetailPriceList() bool {
	return strings.TrimSpace(m.RetailPriceList) != ""
}
