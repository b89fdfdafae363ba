package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// BatchRepository puerto de lotes con vencimiento.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	// ListByKey lotes de la clave ordenados por recepción ascendente.
	ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.Batch, error)
}
