package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ImportStatus string

const (
	ImportStatusImported ImportStatus = "imported"
	ImportStatusUpdated  ImportStatus = "updated"
	ImportStatusFailed   ImportStatus = "failed"
)

type (
	ImportOutcome struct {
		Index                     int
		ItemCode                  string
		ManufacturerProductNumber string
		Status                    ImportStatus
		Reason                    string
		SellingRate               decimal.Decimal
		RetailRate                decimal.NullDecimal
		Currency                  string
	}

	ImportReport struct {
		ID       string
		Imported int
		Updated  int
		Failed   int
		Items    []ImportOutcome
	}
)

func (r *ImportReport) Add(o ImportOutcome) {
	switch o.Status {
	case ImportStatusImported:
		r.Imported++
	case ImportStatusUpdated:
		r.Updated++
	case ImportStatusFailed:
		r.Failed++
	}
	r.Items = append(r.Items, o)
}

// Succeeded returns outcomes of records that were written to the store.
func (r ImportReport) Succeeded() []ImportOutcome {
	var out []ImportOutcome
	for _, o := range r.Items {
		if o.Status != ImportStatusFailed {
			out = append(out, o)
		}
	}
	return out
}

type (
	RateChange struct {
		ItemCode string
		OldRate  decimal.Decimal
		NewRate  decimal.Decimal
	}

	RefreshFailure struct {
		ItemCode string
		Reason   string
	}

	RefreshReport struct {
		SalesOrderID string
		UpdatedItems []RateChange
		FailedItems  []RefreshFailure
		Skipped      int
	}
)

func (r RefreshReport) Message() string {
	switch {
	case len(r.UpdatedItems) == 0 && len(r.FailedItems) == 0:
		return "no EGIS items found in this sales order"
	case len(r.UpdatedItems) == 0:
		return "no items could be updated, all items failed"
	default:
		return fmt.Sprintf(
			"updated %d item(s), %d item(s) could not be updated",
			len(r.UpdatedItems), len(r.FailedItems),
		)
	}
}
