package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusClosed    OrderStatus = "closed"
)

type (
	SalesOrder struct {
		ID       string
		Customer string
		Status   OrderStatus
		Currency string
		Lines    []SalesOrderLine
	}

	SalesOrderLine struct {
		Idx        int
		ItemCode   string
		Qty        decimal.Decimal
		Rate       decimal.Decimal
		IsEGISItem bool
	}
)

func (o SalesOrder) Editable() bool {
	return o.Status == OrderStatusDraft
}

func (o SalesOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

func (l SalesOrderLine) Amount() decimal.Decimal {
	return l.Rate.Mul(l.Qty)
}
