package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementRepository puerto del registro de movimientos (solo anexar, nunca modificar ni borrar).
type MovementRepository interface {
	Append(ctx context.Context, entry *entity.MovementEntry) error
	GetByID(ctx context.Context, id string) (*entity.MovementEntry, error)
	// List historial de una clave, más reciente primero (ID descendente).
	List(ctx context.Context, key entity.StockKey, q entity.HistoryQuery) ([]*entity.MovementEntry, error)
	// ListForReplay todos los movimientos de la clave en orden de anexado (ID ascendente).
	ListForReplay(ctx context.Context, key entity.StockKey) ([]*entity.MovementEntry, error)
	// ListSince movimientos de la clave con Timestamp >= since, orden ascendente.
	ListSince(ctx context.Context, key entity.StockKey, since time.Time) ([]*entity.MovementEntry, error)
	FirstMovementAt(ctx context.Context, key entity.StockKey) (*time.Time, error)
	ListByTransferGroup(ctx context.Context, groupID string) ([]*entity.MovementEntry, error)
	// ExistsByReference para deduplicar eventos externos (p. ej. órdenes ya registradas como venta).
	ExistsByReference(ctx context.Context, key entity.StockKey, kind entity.MovementKind, referenceID string) (bool, error)
}
