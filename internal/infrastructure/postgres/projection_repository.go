package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProjectionRepository = (*ProjectionRepo)(nil)

// ProjectionRepo proyecciones de stock sobre PostgreSQL (usable con pool o tx).
type ProjectionRepo struct {
	q Querier
}

// NewProjectionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectionRepository(q Querier) *ProjectionRepo {
	return &ProjectionRepo{q: q}
}

const projectionColumns = `item_id, location_id, quantity, version, last_movement_id, last_updated,
	has_negative_correction, average_cost, last_unit_cost, prior_average_cost`

// Get proyección actual; cero si la clave no tiene historial.
func (r *ProjectionRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	return r.get(ctx, key, "")
}

// GetForUpdate obtiene la proyección y bloquea la fila (SELECT FOR UPDATE). Si no existe no hay
// fila que bloquear: el INSERT condicional de Save detecta la carrera.
func (r *ProjectionRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	return r.get(ctx, key, " FOR UPDATE")
}

func (r *ProjectionRepo) get(ctx context.Context, key entity.StockKey, suffix string) (*entity.StockProjection, error) {
	query := `SELECT ` + projectionColumns + ` FROM stock_projections
		WHERE item_id = $1 AND location_id = $2` + suffix
	p, err := scanProjection(r.q.QueryRow(ctx, query, key.ItemID, key.LocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ZeroProjection(key), nil
		}
		return nil, fmt.Errorf("get projection: %w", err)
	}
	return p, nil
}

// Save escribe la proyección solo si la versión almacenada sigue siendo expectedVersion.
func (r *ProjectionRepo) Save(ctx context.Context, p *entity.StockProjection, expectedVersion int64) error {
	args := []any{
		p.ItemID, p.LocationID, p.Quantity, p.Version, p.LastMovementID, p.LastUpdated,
		p.HasNegativeCorrection, p.AverageCost, p.LastUnitCost, p.PriorAverageCost,
	}
	var query string
	if expectedVersion == 0 {
		query = `INSERT INTO stock_projections (` + projectionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (item_id, location_id) DO NOTHING`
	} else {
		query = `UPDATE stock_projections SET
				quantity = $3, version = $4, last_movement_id = $5, last_updated = $6,
				has_negative_correction = $7, average_cost = $8, last_unit_cost = $9, prior_average_cost = $10
			WHERE item_id = $1 AND location_id = $2 AND version = $11`
		args = append(args, expectedVersion)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save projection: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// List proyecciones según filtro, ordenadas por clave.
func (r *ProjectionRepo) List(ctx context.Context, f entity.ProjectionFilter) ([]*entity.StockProjection, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + projectionColumns + ` FROM stock_projections WHERE TRUE`)
	args := []any{}
	pos := 1
	if f.ItemID != "" {
		fmt.Fprintf(&sb, " AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.LocationID != "" {
		fmt.Fprintf(&sb, " AND location_id = $%d", pos)
		args = append(args, f.LocationID)
		pos++
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	fmt.Fprintf(&sb, " ORDER BY item_id, location_id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list projections: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.StockProjection, 0)
	for rows.Next() {
		p, err := scanProjection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProjection(row pgx.Row) (*entity.StockProjection, error) {
	var p entity.StockProjection
	err := row.Scan(
		&p.ItemID, &p.LocationID, &p.Quantity, &p.Version, &p.LastMovementID, &p.LastUpdated,
		&p.HasNegativeCorrection, &p.AverageCost, &p.LastUnitCost, &p.PriorAverageCost,
	)
	if err != nil {
		return nil, err
	}
	p.LastUpdated = p.LastUpdated.UTC()
	return &p, nil
}
