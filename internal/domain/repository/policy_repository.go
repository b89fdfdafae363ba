package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// PolicyRepository puerto de políticas de stock por ítem.
type PolicyRepository interface {
	Upsert(ctx context.Context, p *entity.ItemPolicy) error
	// Resolve busca primero ítem+ubicación y luego la política general del ítem; nil si no hay ninguna.
	Resolve(ctx context.Context, key entity.StockKey) (*entity.ItemPolicy, error)
}
