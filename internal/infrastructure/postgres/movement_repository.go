package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo registro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, location_id, quantity_delta, kind, reason, reference_id, actor,
	occurred_at, transfer_group_id, unit_cost, lot_number, expires_at`

// Append anexa un movimiento. La tabla no admite UPDATE ni DELETE.
func (r *MovementRepo) Append(ctx context.Context, e *entity.MovementEntry) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ItemID, e.LocationID, e.QuantityDelta, string(e.Kind), e.Reason, e.ReferenceID, e.Actor,
		e.Timestamp, e.TransferGroupID, e.UnitCost, e.LotNumber, e.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	e, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// List historial de la clave, más reciente primero. Before es exclusivo.
func (r *MovementRepo) List(ctx context.Context, key entity.StockKey, q entity.HistoryQuery) ([]*entity.MovementEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1 AND location_id = $2`)
	args := []any{key.ItemID, key.LocationID}
	pos := 3
	if q.Before != "" {
		fmt.Fprintf(&sb, " AND id < $%d", pos)
		args = append(args, q.Before)
		pos++
	}
	if q.Range.From != nil {
		fmt.Fprintf(&sb, " AND occurred_at >= $%d", pos)
		args = append(args, *q.Range.From)
		pos++
	}
	if q.Range.To != nil {
		fmt.Fprintf(&sb, " AND occurred_at <= $%d", pos)
		args = append(args, *q.Range.To)
		pos++
	}
	sb.WriteString(" ORDER BY id DESC")
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", pos)
		args = append(args, q.Limit)
	}
	return r.query(ctx, sb.String(), args...)
}

// ListForReplay historial completo en orden de aplicación.
func (r *MovementRepo) ListForReplay(ctx context.Context, key entity.StockKey) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE item_id = $1 AND location_id = $2 ORDER BY id`
	return r.query(ctx, query, key.ItemID, key.LocationID)
}

// ListSince movimientos con occurred_at >= since, en orden de aplicación.
func (r *MovementRepo) ListSince(ctx context.Context, key entity.StockKey, since time.Time) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE item_id = $1 AND location_id = $2 AND occurred_at >= $3 ORDER BY id`
	return r.query(ctx, query, key.ItemID, key.LocationID, since)
}

// FirstMovementAt fecha del primer movimiento; nil si la clave no tiene historial.
func (r *MovementRepo) FirstMovementAt(ctx context.Context, key entity.StockKey) (*time.Time, error) {
	var first *time.Time
	err := r.q.QueryRow(ctx,
		`SELECT min(occurred_at) FROM stock_movements WHERE item_id = $1 AND location_id = $2`,
		key.ItemID, key.LocationID,
	).Scan(&first)
	if err != nil {
		return nil, fmt.Errorf("first movement: %w", err)
	}
	return first, nil
}

// ListByTransferGroup las patas (y compensaciones) de un traslado.
func (r *MovementRepo) ListByTransferGroup(ctx context.Context, groupID string) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE transfer_group_id = $1 ORDER BY id`
	return r.query(ctx, query, groupID)
}

// ExistsByReference indica si la clave ya tiene un movimiento de ese tipo con la referencia.
func (r *MovementRepo) ExistsByReference(ctx context.Context, key entity.StockKey, kind entity.MovementKind, referenceID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM stock_movements
			WHERE item_id = $1 AND location_id = $2 AND kind = $3 AND reference_id = $4)`,
		key.ItemID, key.LocationID, string(kind), referenceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by reference: %w", err)
	}
	return exists, nil
}

func (r *MovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.MovementEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.MovementEntry, 0)
	for rows.Next() {
		e, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var e entity.MovementEntry
	var kind string
	err := row.Scan(
		&e.ID, &e.ItemID, &e.LocationID, &e.QuantityDelta, &kind, &e.Reason, &e.ReferenceID, &e.Actor,
		&e.Timestamp, &e.TransferGroupID, &e.UnitCost, &e.LotNumber, &e.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = entity.MovementKind(kind)
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
