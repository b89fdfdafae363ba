package ledger

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Anexar el movimiento y actualizar la proyección ocurren siempre en la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		projRepo repository.ProjectionRepository,
		batchRepo repository.BatchRepository,
	) error) error
}
