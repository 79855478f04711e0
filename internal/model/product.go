package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel classifies a product's remaining stock for display.
type StockLevel string

const (
	StockLow StockLevel = "Low Stock"
	StockOk  StockLevel = "Okay"
	StockIn  StockLevel = "In Stock"
)

// Product is a catalog entry. Stock reflects catalog stock minus the
// quantities reserved by existing invoices: the reconciliation routine is the
// only writer besides direct product edits.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StockLevel buckets stock with the same thresholds the inventory table uses.
func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 10:
		return StockLow
	case p.Stock <= 50:
		return StockOk
	default:
		return StockIn
	}
}
