package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockCurrent es la foto materializada del stock de un producto: cantidad y costo promedio ponderado.
// Se crea en la primera entrada y nunca se borra.
type StockCurrent struct {
	ProductID         string          `db:"product_id"`
	QuantityAvailable decimal.Decimal `db:"quantity_available"`
	AverageCost       decimal.Decimal `db:"average_cost"`
	LastMovementDate  time.Time       `db:"last_movement_date"`
	LastUpdated       time.Time       `db:"last_updated"`
}

// StockValuation fila del listado de stock con datos del producto.
type StockValuation struct {
	StockCurrent
	Reference string `db:"reference"`
	Name      string `db:"name"`
	Unit      string `db:"unit"`
}

// TotalValue cantidad por costo promedio, a 2 decimales.
func (s *StockValuation) TotalValue() decimal.Decimal {
	return s.QuantityAvailable.Mul(s.AverageCost).Round(2)
}
