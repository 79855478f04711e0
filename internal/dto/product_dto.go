package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name  string          `json:"name"  validate:"required,min=1,max=120"`
	SKU   string          `json:"sku"   validate:"required,min=1,max=64"`
	Stock int             `json:"stock" validate:"min=0"`
	Price decimal.Decimal `json:"price" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"  validate:"omitempty,min=1,max=120"`
	SKU   *string          `json:"sku"   validate:"omitempty,min=1,max=64"`
	Stock *int             `json:"stock" validate:"omitempty,min=0"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductFilter narrows List: Search matches name or SKU case-insensitively,
// LowStockOnly keeps products at or below the configured threshold.
type ProductFilter struct {
	Search       string `json:"search"`
	LowStockOnly bool   `json:"low_stock_only"`
}
