package inventory

import "github.com/shopspring/decimal"

// CostScale decimales con los que se guarda el costo promedio.
const CostScale = 4

// WeightedAverageCost implementa el costo promedio ponderado móvil (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada.Round(CostScale)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(CostScale)
}

// RemoveFromAverage retira del promedio la contribución de una entrada (q a costo c).
// (StockActual*CostoActual - q*c) / (StockActual - q). Si no queda stock el promedio no cambia;
// el resultado nunca es negativo.
func RemoveFromAverage(stockActual, costoActual, cantSalida, costoSalida decimal.Decimal) decimal.Decimal {
	rest := stockActual.Sub(cantSalida)
	if rest.LessThanOrEqual(decimal.Zero) {
		return costoActual
	}
	num := stockActual.Mul(costoActual).Sub(cantSalida.Mul(costoSalida))
	if num.IsNegative() {
		return decimal.Zero
	}
	return num.Div(rest).Round(CostScale)
}
