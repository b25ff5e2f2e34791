package ports

import (
	"context"

	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// Invalidate señala las etiquetas tras un commit. Un fallo de la caché no revierte la operación: sólo se registra.
func Invalidate(ctx context.Context, cache Cache, log *logger.Logger, tags ...string) {
	if cache == nil || len(tags) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, tags...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("tags", tags).Msg("cache invalidation failed")
	}
}

// LedgerTags etiquetas de un documento que movió stock.
func LedgerTags(documentTag string) []string {
	return []string{TagStock, TagStockMovements, documentTag}
}
