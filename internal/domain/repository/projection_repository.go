package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ProjectionRepository puerto de las proyecciones de stock.
// Get y GetForUpdate devuelven una proyección en cero (Version 0) si la clave no tiene historial.
type ProjectionRepository interface {
	Get(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error)
	// GetForUpdate bloquea la fila cuando el almacenamiento lo soporta (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error)
	// Save escritura condicional: falla con domain.ErrConcurrencyConflict si la versión
	// almacenada ya no es expectedVersion.
	Save(ctx context.Context, p *entity.StockProjection, expectedVersion int64) error
	List(ctx context.Context, f entity.ProjectionFilter) ([]*entity.StockProjection, error)
}
