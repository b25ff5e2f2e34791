package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Gestion-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost_StockVacio(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, d("5"), d("100"))
	assert.True(t, got.Equal(d("100")), "primera entrada fija el costo de entrada, got %s", got)
}

func TestWeightedAverageCost_SegundaEntrada(t *testing.T) {
	// (10*20 + 5*26) / 15 = 22
	got := inventory.WeightedAverageCost(d("10"), d("20"), d("5"), d("26"))
	assert.True(t, got.Equal(d("22")), "got %s", got)

	// (3*10 + 1*11) / 4 = 10.25
	got = inventory.WeightedAverageCost(d("3"), d("10"), d("1"), d("11"))
	assert.True(t, got.Equal(d("10.25")), "got %s", got)
}

func TestWeightedAverageCost_RedondeoEscala4(t *testing.T) {
	// (1*10 + 2*11) / 3 = 10.6666...
	got := inventory.WeightedAverageCost(d("1"), d("10"), d("2"), d("11"))
	assert.Equal(t, "10.6667", got.StringFixed(4))
}

func TestRemoveFromAverage(t *testing.T) {
	// 15 u a 22 incluye 5 u a 26: al retirarlas vuelve a 20
	got := inventory.RemoveFromAverage(d("15"), d("22"), d("5"), d("26"))
	assert.True(t, got.Equal(d("20")), "got %s", got)
}

func TestRemoveFromAverage_SinStockRestante(t *testing.T) {
	got := inventory.RemoveFromAverage(d("5"), d("100"), d("5"), d("100"))
	assert.True(t, got.Equal(d("100")), "sin stock restante el promedio no cambia, got %s", got)
}

func TestRemoveFromAverage_NoNegativo(t *testing.T) {
	// salidas previas a costo bajo pueden dejar el numerador negativo
	got := inventory.RemoveFromAverage(d("2"), d("1"), d("1"), d("50"))
	assert.True(t, got.IsZero(), "got %s", got)
}
