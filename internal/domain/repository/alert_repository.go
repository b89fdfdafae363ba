package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// AlertRepository puerto de alertas. Create devuelve domain.ErrDuplicate si ya existe una
// alerta activa con la misma clave de deduplicación.
type AlertRepository interface {
	Create(ctx context.Context, a *entity.Alert) error
	Update(ctx context.Context, a *entity.Alert) error
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	ListActiveByKey(ctx context.Context, key entity.StockKey) ([]*entity.Alert, error)
	List(ctx context.Context, f entity.AlertFilter) ([]*entity.Alert, error)
}
