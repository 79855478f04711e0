package dto

import "github.com/shopspring/decimal"

// DashboardSummary carries the stat-card figures for the dashboard.
type DashboardSummary struct {
	TodaysRevenue  decimal.Decimal `json:"todays_revenue"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalProducts  int             `json:"total_products"`
	TotalCustomers int             `json:"total_customers"`
	TotalInvoices  int             `json:"total_invoices"`
	UnpaidInvoices int             `json:"unpaid_invoices"`
}

// DailyRevenue is one bar of the revenue-by-day chart.
type DailyRevenue struct {
	Date  string          `json:"date"`  // YYYY-MM-DD
	Label string          `json:"label"` // short weekday name
	Total decimal.Decimal `json:"total"`
}
