package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusPaid   InvoiceStatus = "Paid"
	StatusUnpaid InvoiceStatus = "Unpaid"
)

// InvoiceItem is a line on an invoice. ProductName and Price are snapshots
// frozen when the line was added — renaming or repricing a product later must
// not rewrite invoice history, so these are never re-resolved.
type InvoiceItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Invoice carries a denormalized CustomerName snapshot for the same reason
// as InvoiceItem. Total always equals the sum over items of price×quantity;
// it is recomputed on every save, never edited independently.
type Invoice struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Items        []InvoiceItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Date         time.Time       `json:"date"`
	Status       InvoiceStatus   `json:"status"`
}

// ComputeTotal sums price×quantity over the current line items.
func (inv Invoice) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
