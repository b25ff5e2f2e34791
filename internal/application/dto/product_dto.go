package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Reference       string          `json:"reference" validate:"required,max=100"`
	Name            string          `json:"name" validate:"required,max=200"`
	Unit            string          `json:"unit" validate:"required,max=20"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SalePriceLocal  decimal.Decimal `json:"sale_price_local"`
	SalePriceExport decimal.Decimal `json:"sale_price_export"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Active          *bool           `json:"active"`
}

// UpdateProductRequest precios, impuesto y estado; la referencia es inmutable.
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit            *string          `json:"unit" validate:"omitempty,min=1,max=20"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SalePriceLocal  *decimal.Decimal `json:"sale_price_local"`
	SalePriceExport *decimal.Decimal `json:"sale_price_export"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	Active          *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SalePriceLocal  decimal.Decimal `json:"sale_price_local"`
	SalePriceExport decimal.Decimal `json:"sale_price_export"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
