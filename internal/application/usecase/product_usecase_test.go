package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newProductUseCase() (*usecase.ProductUseCase, *cache.MemoryCache) {
	c := cache.NewMemoryCache(0)
	return usecase.NewProductUseCase(memory.NewStore().Repos().Products, c, logger.Nop()), c
}

func createRequest(ref string) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Reference: ref, Name: "Vis inox", Unit: "u",
		PurchasePrice: d("4"), SalePriceLocal: d("10"), SalePriceExport: d("12"), TaxRate: d("20"),
	}
}

func TestProductUseCase_Create(t *testing.T) {
	uc, c := newProductUseCase()
	ctx := context.Background()

	out, err := uc.Create(ctx, createRequest("VIS-01"))
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.Active, "activo por defecto")
	v, _ := c.TagVersion(ctx, ports.TagProducts)
	assert.Equal(t, int64(1), v)

	_, err = uc.Create(ctx, createRequest("VIS-01"))
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	uc, _ := newProductUseCase()

	in := createRequest("")
	_, err := uc.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reference", ve.Field)

	in = createRequest("VIS-02")
	in.TaxRate = d("120")
	_, err = uc.Create(context.Background(), in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tax_rate", ve.Field)
}

func TestProductUseCase_UpdateParcial(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()
	created, err := uc.Create(ctx, createRequest("VIS-01"))
	require.NoError(t, err)

	price := d("11")
	inactive := false
	out, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{SalePriceLocal: &price, Active: &inactive})
	require.NoError(t, err)
	assert.True(t, d("11").Equal(out.SalePriceLocal))
	assert.True(t, d("12").Equal(out.SalePriceExport))
	assert.False(t, out.Active)
	assert.Equal(t, "Vis inox", out.Name)

	negative := d("-1")
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{PurchasePrice: &negative})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "inconnu", dto.UpdateProductRequest{SalePriceLocal: &price})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_List(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()
	for _, ref := range []string{"B", "A", "C"} {
		_, err := uc.Create(ctx, createRequest(ref))
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "A", out.Items[0].Reference)
	assert.Equal(t, 3, out.Page.Total)
}
