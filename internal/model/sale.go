package model

import "github.com/shopspring/decimal"

// SaleDateLayout is the calendar-day format Sale.Date is stored in.
const SaleDateLayout = "2006-01-02"

// Sale is a derived record: one exists iff the invoice it references is
// currently Paid, and its amount mirrors that invoice's total. Sales are
// only ever written by the invoice reconciliation, never authored directly.
type Sale struct {
	Date      string          `json:"date"` // YYYY-MM-DD, invoice date truncated to the day
	Amount    decimal.Decimal `json:"amount"`
	InvoiceID string          `json:"invoiceId"`
}
