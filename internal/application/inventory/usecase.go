package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// StockUseCase lecturas del stock actual y del libro de movimientos.
// El stock sólo cambia a través de los documentos; aquí no hay escrituras.
type StockUseCase struct {
	repos repository.Repos
	cache ports.Cache
	log   *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(repos repository.Repos, cache ports.Cache, log *logger.Logger) *StockUseCase {
	return &StockUseCase{repos: repos, cache: cache, log: log.Component("stock")}
}

// ListStock foto del stock valorizado. Se cachea por versión de las etiquetas stock y products.
func (uc *StockUseCase) ListStock(ctx context.Context, page dto.PageRequest) (*dto.StockListResponse, error) {
	page.DefaultPage()
	key, cacheable := uc.listKey(ctx, page)
	if cacheable {
		if raw, ok, err := uc.cache.Get(ctx, key); err != nil {
			uc.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stock cache read failed")
		} else if ok {
			var cached dto.StockListResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	list, total, err := uc.repos.Stock.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.StockListResponse{
		Items: make([]dto.StockResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, s := range list {
		out.Items = append(out.Items, valuationResponse(s))
	}

	if cacheable {
		if raw, err := json.Marshal(out); err == nil {
			if err := uc.cache.Set(ctx, key, raw); err != nil {
				uc.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stock cache write failed")
			}
		}
	}
	return out, nil
}

// listKey la clave cambia en cuanto cualquiera de las etiquetas se invalida.
func (uc *StockUseCase) listKey(ctx context.Context, page dto.PageRequest) (string, bool) {
	if uc.cache == nil {
		return "", false
	}
	stockVer, err := uc.cache.TagVersion(ctx, ports.TagStock)
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Msg("stock cache version unavailable")
		return "", false
	}
	productsVer, err := uc.cache.TagVersion(ctx, ports.TagProducts)
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Msg("stock cache version unavailable")
		return "", false
	}
	return fmt.Sprintf("stock:list:v%d.%d:%d:%d", stockVer, productsVer, page.Limit, page.Offset), true
}

// GetStock stock de un producto. Un producto sin movimientos devuelve cantidad y costo cero.
func (uc *StockUseCase) GetStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, productID)
	}
	s, err := uc.repos.Stock.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	v := &entity.StockValuation{Reference: p.Reference, Name: p.Name, Unit: p.Unit}
	v.ProductID = p.ID
	if s != nil {
		v.StockCurrent = *s
	}
	resp := valuationResponse(v)
	return &resp, nil
}

// ListMovements libro de movimientos filtrado, el más reciente primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	q.DefaultPage()
	from, err := dto.ParseOptionalDate("from", q.From)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseOptionalDate("to", q.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.NewValidation("to", "la date de fin précède la date de début")
	}
	list, total, err := uc.repos.Movements.List(ctx, entity.MovementFilter{
		ProductID:     q.ProductID,
		ReferenceType: q.ReferenceType,
		ReferenceID:   q.ReferenceID,
		MovementType:  q.MovementType,
		From:          from,
		To:            to,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.MovementResponse{
			ID:             m.ID,
			ProductID:      m.ProductID,
			MovementType:   m.MovementType,
			MovementSource: m.MovementSource,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			Quantity:       m.Quantity,
			UnitCost:       m.UnitCost,
			MovementDate:   dto.FormatDate(m.MovementDate),
			Note:           m.Note,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out, nil
}

func valuationResponse(s *entity.StockValuation) dto.StockResponse {
	return dto.StockResponse{
		ProductID:         s.ProductID,
		Reference:         s.Reference,
		Name:              s.Name,
		Unit:              s.Unit,
		QuantityAvailable: s.QuantityAvailable,
		AverageCost:       s.AverageCost,
		TotalValue:        s.TotalValue(),
		LastMovementDate:  dto.FormatDate(s.LastMovementDate),
		LastUpdated:       s.LastUpdated,
	}
}
