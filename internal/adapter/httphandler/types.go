package httphandler

import (
	"time"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	SearchRequest struct {
		Term              string              `json:"term"`
		OnlyActive        bool                `json:"only_active"`
		OnlyStocked       bool                `json:"only_stocked"`
		OnlyInDescription bool                `json:"only_in_description"`
		MinPrice          decimal.NullDecimal `json:"min_price"`
		MaxPrice          decimal.NullDecimal `json:"max_price"`
		Sort              string              `json:"sort"`

		// Comma separated lists.
		Distributors  string `json:"distributors"`
		Manufacturers string `json:"manufacturers"`
		ProductGroups string `json:"product_groups"`
		StartRow      int    `json:"start_row"`
	}

	SearchResponse struct {
		Total       int       `json:"total"`
		FirstResult int       `json:"first_result"`
		LastResult  int       `json:"last_result"`
		Items       []Product `json:"items"`
	}

	Product struct {
		ProprietaryProductNumber  string              `json:"proprietary_product_number"`
		Description               string              `json:"description"`
		ManufacturerID            string              `json:"manufacturer_id"`
		ManufacturerName          string              `json:"manufacturer_name"`
		ManufacturerProductNumber string              `json:"manufacturer_product_number"`
		GlobalProductNumber       string              `json:"global_product_number"`
		ProductGroupID            string              `json:"product_group_id"`
		PurchasePrice             decimal.NullDecimal `json:"purchase_price"`
		RecommendedRetailPrice    decimal.NullDecimal `json:"recommended_retail_price"`
		Currency                  string              `json:"currency"`
		PriceTimestamp            *time.Time          `json:"price_timestamp,omitempty"`
		ImageURL                  string              `json:"image_url"`
		ExistsLocally             bool                `json:"exists_locally"`
	}

	ImportRequest struct {
		Items []Product `json:"items"`
	}

	ImportOutcome struct {
		Index                     int    `json:"index"`
		ItemCode                  string `json:"item_code"`
		ManufacturerProductNumber string `json:"manufacturer_product_number"`
		Status                    string `json:"status"`
		Reason                    string `json:"reason,omitempty"`
	}

	ImportReport struct {
		ID       string          `json:"id"`
		Imported int             `json:"imported"`
		Updated  int             `json:"updated"`
		Failed   int             `json:"failed"`
		Items    []ImportOutcome `json:"items"`
	}

	RateChange struct {
		ItemCode string          `json:"item_code"`
		OldRate  decimal.Decimal `json:"old_rate"`
		NewRate  decimal.Decimal `json:"new_rate"`
	}

	RefreshFailure struct {
		ItemCode string `json:"item_code"`
		Reason   string `json:"reason"`
	}

	RefreshReport struct {
		SalesOrderID string           `json:"sales_order_id"`
		Message      string           `json:"message"`
		UpdatedItems []RateChange     `json:"updated_items"`
		FailedItems  []RefreshFailure `json:"failed_items"`
		Skipped      int              `json:"skipped"`
	}

	Mapping struct {
		SellingPriceList    string `json:"selling_price_list"`
		RetailPriceList     string `json:"retail_price_list,omitempty"`
		ItemGroup           string `json:"item_group"`
		GroupByProductGroup bool   `json:"group_by_product_group"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

func (r SearchRequest) toDomain() domain.SearchFilter {
	return domain.SearchFilter{
		Term:              r.Term,
		OnlyActive:        r.OnlyActive,
		OnlyStocked:       r.OnlyStocked,
		OnlyInDescription: r.OnlyInDescription,
		MinPrice:          r.MinPrice,
		MaxPrice:          r.MaxPrice,
		Sort:              domain.SortOrder(r.Sort),
		Distributors:      domain.SplitList(r.Distributors),
		Manufacturers:     domain.SplitList(r.Manufacturers),
		ProductGroups:     domain.SplitList(r.ProductGroups),
	}
}

func productFromDomain(r domain.ProductRecord) Product {
	p := Product{
		ProprietaryProductNumber:  r.ProprietaryProductNumber,
		Description:               r.Description,
		ManufacturerID:            r.ManufacturerID,
		ManufacturerName:          r.ManufacturerName,
		ManufacturerProductNumber: r.ManufacturerProductNumber,
		GlobalProductNumber:       r.GlobalProductNumber,
		ProductGroupID:            r.ProductGroupID,
		PurchasePrice:             r.PurchasePrice,
		RecommendedRetailPrice:    r.RecommendedRetailPrice,
		Currency:                  r.Currency,
		ImageURL:                  r.ImageURL,
		ExistsLocally:             r.ExistsLocally,
	}
	if !r.PriceTimestamp.IsZero() {
		ts := r.PriceTimestamp
		p.PriceTimestamp = &ts
	}
	return p
}

func (p Product) toDomain() domain.ProductRecord {
	r := domain.ProductRecord{
		ProprietaryProductNumber:  p.ProprietaryProductNumber,
		Description:               p.Description,
		ManufacturerID:            p.ManufacturerID,
		ManufacturerName:          p.ManufacturerName,
		ManufacturerProductNumber: p.ManufacturerProductNumber,
		GlobalProductNumber:       p.GlobalProductNumber,
		ProductGroupID:            p.ProductGroupID,
		PurchasePrice:             p.PurchasePrice,
		RecommendedRetailPrice:    p.RecommendedRetailPrice,
		Currency:                  p.Currency,
		ImageURL:                  p.ImageURL,
		ExistsLocally:             p.ExistsLocally,
	}
	if p.PriceTimestamp != nil {
		r.PriceTimestamp = *p.PriceTimestamp
	}
	return r
}

func searchResponseFromDomain(res domain.SearchResult) SearchResponse {
	items := make([]Product, len(res.Records))
	for i, r := range res.Records {
		items[i] = productFromDomain(r)
	}
	return SearchResponse{
		Total:       res.Total,
		FirstResult: res.FirstResult,
		LastResult:  res.LastResult,
		Items:       items,
	}
}

func importReportFromDomain(r domain.ImportReport) ImportReport {
	items := make([]ImportOutcome, len(r.Items))
	for i, o := range r.Items {
		items[i] = ImportOutcome{
			Index:                     o.Index,
			ItemCode:                  o.ItemCode,
			ManufacturerProductNumber: o.ManufacturerProductNumber,
			Status:                    string(o.Status),
			Reason:                    o.Reason,
		}
	}
	return ImportReport{
		ID:       r.ID,
		Imported: r.Imported,
		Updated:  r.Updated,
		Failed:   r.Failed,
		Items:    items,
	}
}

func refreshReportFromDomain(r domain.RefreshReport) RefreshReport {
	updated := make([]RateChange, len(r.UpdatedItems))
	for i, c := range r.UpdatedItems {
		updated[i] = RateChange{ItemCode: c.ItemCode, OldRate: c.OldRate, NewRate: c.NewRate}
	}
	failed := make([]RefreshFailure, len(r.FailedItems))
	for i, f := range r.FailedItems {
		failed[i] = RefreshFailure{ItemCode: f.ItemCode, Reason: f.Reason}
	}
	return RefreshReport{
		SalesOrderID: r.SalesOrderID,
		Message:      r.Message(),
		UpdatedItems: updated,
		FailedItems:  failed,
		Skipped:      r.Skipped,
	}
}

func mappingFromDomain(m domain.ImportMapping) Mapping {
	return Mapping{
		SellingPriceList:    m.SellingPriceList,
		RetailPriceList:     m.RetailPriceList,
		ItemGroup:           m.ItemGroup,
		GroupByProductGroup: m.GroupByProductGroup,
	}
}
