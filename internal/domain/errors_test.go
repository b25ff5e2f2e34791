package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

func TestErroresTipados_EnvuelvenSentinelas(t *testing.T) {
	tests := []struct {
		err    error
		target error
	}{
		{&domain.ProductNotFoundError{ProductID: "p1"}, domain.ErrProductNotFound},
		{&domain.NoStockRecordError{ProductID: "p1"}, domain.ErrNoStockRecord},
		{&domain.InsufficientStockError{ProductID: "p1"}, domain.ErrInsufficientStock},
		{domain.NewValidation("quantity", "x"), domain.ErrInvalidInput},
		{domain.NewNotFound(domain.EntityInvoice, "i1"), domain.ErrNotFound},
		{domain.NewAlreadyExists(domain.EntityInvoice, "FA-2026-00001"), domain.ErrAlreadyExists},
		{domain.NewConflict("x"), domain.ErrConflict},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("apply movements: %w", tt.err)
		assert.True(t, errors.Is(wrapped, tt.target), "%T", tt.err)
		assert.True(t, domain.IsDomainError(wrapped))
	}
}

func TestInsufficientStockError_Mensaje(t *testing.T) {
	err := &domain.InsufficientStockError{
		ProductID:   "p1",
		ProductName: "Vis inox",
		Current:     decimal.NewFromInt(3),
		Requested:   decimal.RequireFromString("4.5"),
	}
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "Stock insuffisant pour le produit Vis inox"), msg)
	assert.Contains(t, msg, "disponible 3")
	// separador decimal francés
	assert.Contains(t, msg, "demandé 4,5")
}

func TestNoStockRecordError_SinNombreUsaID(t *testing.T) {
	err := &domain.NoStockRecordError{ProductID: "p-42"}
	assert.Contains(t, err.Error(), "p-42")
}

func TestUserMessage_OcultaErroresDeInfraestructura(t *testing.T) {
	assert.Equal(t, "", domain.UserMessage(nil))
	assert.Equal(t, "Une erreur interne est survenue", domain.UserMessage(errors.New("dial tcp: connection refused")))
	assert.Equal(t, "Produit introuvable : p1", domain.UserMessage(&domain.ProductNotFoundError{ProductID: "p1"}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12,50", domain.FormatAmount(decimal.RequireFromString("12.5")))
}
