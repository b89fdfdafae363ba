package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes con vencimiento sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_batches (movement_id, item_id, location_id, lot_number, expires_at, quantity, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.MovementID, b.ItemID, b.LocationID, b.LotNumber, b.ExpiresAt, b.Quantity, b.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// ListByKey lotes de la clave en orden de recepción.
func (r *BatchRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, item_id, location_id, lot_number, expires_at, quantity, received_at
		FROM stock_batches WHERE item_id = $1 AND location_id = $2
		ORDER BY received_at, movement_id`,
		key.ItemID, key.LocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.Batch, 0)
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.MovementID, &b.ItemID, &b.LocationID, &b.LotNumber, &b.ExpiresAt, &b.Quantity, &b.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.ExpiresAt = b.ExpiresAt.UTC()
		b.ReceivedAt = b.ReceivedAt.UTC()
		out = append(out, &b)
	}
	return out, rows.Err()
}
