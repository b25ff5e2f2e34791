package dto_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
)

func TestValidate_CampoConNombreJSON(t *testing.T) {
	in := dto.CreatePurchaseOrderRequest{
		SupplierName: "Acme",
		OrderDate:    "2026-02-01",
		Items:        []dto.PurchaseOrderItemRequest{{ProductID: ""}},
	}
	err := dto.Validate(in)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items[0].product_id", verr.Field)
	assert.Equal(t, "champ obligatoire", verr.Reason)
}

func TestValidate_FechaYOneOf(t *testing.T) {
	err := dto.Validate(dto.CreateDeliveryNoteRequest{
		CustomerName: "Client", SaleType: "local", DeliveryDate: "01/02/2026",
		Items: []dto.DeliveryNoteItemRequest{{ProductID: "p1"}},
	})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "delivery_date", verr.Field)

	err = dto.Validate(dto.CreateDeliveryNoteRequest{
		CustomerName: "Client", SaleType: "wholesale", DeliveryDate: "2026-02-01",
		Items: []dto.DeliveryNoteItemRequest{{ProductID: "p1"}},
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "sale_type", verr.Field)
}

func TestValidate_LineasObligatorias(t *testing.T) {
	err := dto.Validate(dto.CreatePurchaseOrderRequest{SupplierName: "Acme", OrderDate: "2026-02-01"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestParseDate(t *testing.T) {
	d, err := dto.ParseDate("order_date", "2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", dto.FormatDate(d))

	_, err = dto.ParseDate("order_date", "2026-02-30")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	opt, err := dto.ParseOptionalDate("due_date", "")
	require.NoError(t, err)
	assert.Nil(t, opt)
}
