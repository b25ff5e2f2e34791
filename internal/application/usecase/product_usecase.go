package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

var maxTaxRate = decimal.NewFromInt(100)

// ProductUseCase casos de uso del catálogo. Cantidad y costo promedio se manejan vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	cache ports.Cache
	log   *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, cache ports.Cache, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, cache: cache, log: log.Component("products")}
}

// Create crea un producto. La referencia es única.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := validatePrices(in.PurchasePrice, in.SalePriceLocal, in.SalePriceExport, in.TaxRate); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByReference(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewAlreadyExists(domain.EntityProduct, in.Reference)
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		Reference:       in.Reference,
		Name:            in.Name,
		Unit:            in.Unit,
		PurchasePrice:   in.PurchasePrice,
		SalePriceLocal:  in.SalePriceLocal,
		SalePriceExport: in.SalePriceExport,
		TaxRate:         in.TaxRate,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagProducts)
	uc.log.Ctx(ctx).Info().Str("product_id", product.ID).Str("reference", product.Reference).Msg("product created")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No toca cantidad ni costo promedio.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePriceLocal != nil {
		product.SalePriceLocal = *in.SalePriceLocal
	}
	if in.SalePriceExport != nil {
		product.SalePriceExport = *in.SalePriceExport
	}
	if in.TaxRate != nil {
		product.TaxRate = *in.TaxRate
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := validatePrices(product.PurchasePrice, product.SalePriceLocal, product.SalePriceExport, product.TaxRate); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagProducts)
	uc.log.Ctx(ctx).Info().Str("product_id", product.ID).Msg("product updated")
	return toProductResponse(product), nil
}

// List lista productos por referencia con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func validatePrices(purchase, local, export, tax decimal.Decimal) error {
	switch {
	case purchase.IsNegative():
		return domain.NewValidation("purchase_price", "le prix ne peut pas être négatif")
	case local.IsNegative():
		return domain.NewValidation("sale_price_local", "le prix ne peut pas être négatif")
	case export.IsNegative():
		return domain.NewValidation("sale_price_export", "le prix ne peut pas être négatif")
	case tax.IsNegative() || tax.GreaterThan(maxTaxRate):
		return domain.NewValidation("tax_rate", "le taux doit être compris entre 0 et 100")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:              p.ID,
		Reference:       p.Reference,
		Name:            p.Name,
		Unit:            p.Unit,
		PurchasePrice:   p.PurchasePrice,
		SalePriceLocal:  p.SalePriceLocal,
		SalePriceExport: p.SalePriceExport,
		TaxRate:         p.TaxRate,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
