package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Gestion-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

func TestPaymentStatus(t *testing.T) {
	tol := billing.DefaultTolerance
	tests := []struct {
		name        string
		total, paid string
		want        string
	}{
		{"sin pagos", "100", "0", entity.PaymentStatusUnpaid},
		{"dentro de la tolerancia inferior", "100", "0.01", entity.PaymentStatusUnpaid},
		{"parcial", "100", "40", entity.PaymentStatusPartial},
		{"un céntimo por debajo cuenta como pagada", "100", "99.99", entity.PaymentStatusPaid},
		{"exacto", "100", "100", entity.PaymentStatusPaid},
		{"sobrepago", "100", "120", entity.PaymentStatusPaid},
		{"factura en cero", "0", "0", entity.PaymentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.PaymentStatus(decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.paid), tol)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutstanding(t *testing.T) {
	assert.Equal(t, "60", billing.Outstanding(decimal.NewFromInt(100), decimal.NewFromInt(40)).String())
	assert.True(t, billing.Outstanding(decimal.NewFromInt(100), decimal.NewFromInt(150)).IsZero())
}
