package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestImportReportAdd(t *testing.T) {
	var r ImportReport
	r.Add(ImportOutcome{ItemCode: "A", Status: ImportStatusImported})
	r.Add(ImportOutcome{ItemCode: "B", Status: ImportStatusUpdated})
	r.Add(ImportOutcome{ItemCode: "C", Status: ImportStatusFailed, Reason: "x"})

	assert.Equal(t, 1, r.Imported)
	assert.Equal(t, 1, r.Updated)
	assert.Equal(t, 1, r.Failed)
	assert.Len(t, r.Items, 3)
	assert.Len(t, r.Succeeded(), 2)
}

func TestRefreshReportMessage(t *testing.T) {
	assert.Equal(t,
		"no EGIS items found in this sales order", RefreshReport{}.Message(),
	)

	allFailed := RefreshReport{FailedItems: []RefreshFailure{{ItemCode: "A"}}}
	assert.Equal(t, "no items could be updated, all items failed", allFailed.Message())

	partial := RefreshReport{
		UpdatedItems: []RateChange{{ItemCode: "A", NewRate: decimal.NewFromInt(1)}},
		FailedItems:  []RefreshFailure{{ItemCode: "B"}},
	}
	assert.Equal(t, "updated 1 item(s), 1 item(s) could not be updated", partial.Message())
}

func TestCatalogErrorUnwrap(t *testing.T) {
	netErr := errors.New("connection refused")
	err := &CatalogError{Err: netErr}
	assert.ErrorIs(t, err, ErrCatalog)
	assert.ErrorIs(t, err, netErr)

	payload := &CatalogError{Number: "101", Message: "Login failed"}
	assert.ErrorIs(t, payload, ErrCatalog)
	assert.Equal(t, "catalog error 101: Login failed", payload.Error())
}

func TestSalesOrderTotal(t *testing.T) {
	o := SalesOrder{Lines: []SalesOrderLine{
		{Qty: decimal.NewFromInt(2), Rate: decimal.RequireFromString("10.50")},
		{Qty: decimal.NewFromInt(1), Rate: decimal.RequireFromString("4")},
	}}
	assert.True(t, o.Total().Equal(decimal.RequireFromString("25")))
	assert.False(t, o.Editable())
}
