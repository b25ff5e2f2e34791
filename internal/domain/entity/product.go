package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo.
// El costo promedio no vive aquí: se mantiene en StockCurrent a partir de los movimientos.
type Product struct {
	ID              string          `db:"id"`
	Reference       string          `db:"reference"` // código único
	Name            string          `db:"name"`
	Unit            string          `db:"unit"`
	PurchasePrice   decimal.Decimal `db:"purchase_price"`
	SalePriceLocal  decimal.Decimal `db:"sale_price_local"`
	SalePriceExport decimal.Decimal `db:"sale_price_export"`
	TaxRate         decimal.Decimal `db:"tax_rate"` // porcentaje: 20 = 20 %
	Active          bool            `db:"active"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// SalePrice devuelve el precio de venta según el tipo de venta.
func (p *Product) SalePrice(saleType string) decimal.Decimal {
	if saleType == SaleTypeExport {
		return p.SalePriceExport
	}
	return p.SalePriceLocal
}
