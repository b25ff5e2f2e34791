package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/inventory"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name                 string
		qty, price, discount string
		want                 string
	}{
		{"sin descuento", "2", "50", "0", "100.00"},
		{"descuento 10%", "3", "19.99", "10", "53.97"},
		{"redondeo", "1", "0.335", "0", "0.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.LineTotal(d(tt.qty), d(tt.price), d(tt.discount))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestProportionalLineTotal(t *testing.T) {
	assert.Equal(t, "700.00", inventory.ProportionalLineTotal(d("1000"), d("10"), d("7")).StringFixed(2))
	assert.Equal(t, "33.33", inventory.ProportionalLineTotal(d("100"), d("3"), d("1")).StringFixed(2))
	assert.True(t, inventory.ProportionalLineTotal(d("100"), d("0"), d("1")).IsZero())
}

func TestCancelLine_Proporcional(t *testing.T) {
	res, err := inventory.CancelLine(d("10"), d("1000"), d("3"))
	require.NoError(t, err)
	assert.True(t, res.RemainingQuantity.Equal(d("7")))
	assert.Equal(t, "700.00", res.RemainingLineTotal.StringFixed(2))
	assert.Equal(t, "300.00", res.CancelledLineTotal.StringFixed(2))
}

func TestCancelLine_TotalesCuadran(t *testing.T) {
	res, err := inventory.CancelLine(d("3"), d("100"), d("1"))
	require.NoError(t, err)
	assert.Equal(t, "66.67", res.RemainingLineTotal.StringFixed(2))
	assert.Equal(t, "33.33", res.CancelledLineTotal.StringFixed(2))
	assert.True(t, res.RemainingLineTotal.Add(res.CancelledLineTotal).Equal(d("100")))
}

func TestCancelLine_Completa(t *testing.T) {
	res, err := inventory.CancelLine(d("4"), d("80"), d("4"))
	require.NoError(t, err)
	assert.True(t, res.RemainingQuantity.IsZero())
	assert.True(t, res.RemainingLineTotal.IsZero())
	assert.True(t, res.CancelledLineTotal.Equal(d("80")))
}

func TestCancelLine_CantidadInvalida(t *testing.T) {
	_, err := inventory.CancelLine(d("10"), d("1000"), d("0"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = inventory.CancelLine(d("10"), d("1000"), d("11"))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cancelledQuantity", verr.Field)
}

func TestCancelFromLine_AnulacionesSucesivasCuadran(t *testing.T) {
	first, err := inventory.CancelFromLine(d("3"), d("100"), d("0"), d("1"))
	require.NoError(t, err)
	second, err := inventory.CancelFromLine(d("3"), d("100"), d("1"), d("1"))
	require.NoError(t, err)
	third, err := inventory.CancelFromLine(d("3"), d("100"), d("2"), d("1"))
	require.NoError(t, err)

	total := first.CancelledLineTotal.Add(second.CancelledLineTotal).Add(third.CancelledLineTotal)
	assert.Equal(t, "100.00", total.StringFixed(2))
	assert.True(t, third.RemainingQuantity.IsZero())

	_, err = inventory.CancelFromLine(d("3"), d("100"), d("3"), d("1"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "nada restante")
}
