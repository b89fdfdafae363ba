package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas sobre PostgreSQL. La foto de la condición se guarda como JSONB.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

const alertColumns = `id, item_id, location_id, kind, severity, state, opened_at, resolved_at, updated_at,
	acknowledged_by, dismissed_by, snapshot`

var activeStates = []string{string(entity.AlertOpen), string(entity.AlertAcknowledged), string(entity.AlertDismissed)}

// Create inserta la alerta; el índice parcial único rechaza una segunda activa con la misma clave.
func (r *AlertRepo) Create(ctx context.Context, a *entity.Alert) error {
	snap, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.q.Exec(ctx, `INSERT INTO stock_alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.ItemID, a.LocationID, string(a.Kind), string(a.Severity), string(a.State),
		a.OpenedAt, a.ResolvedAt, a.UpdatedAt, a.AcknowledgedBy, a.DismissedBy, snap,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) Update(ctx context.Context, a *entity.Alert) error {
	snap, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_alerts SET severity = $2, state = $3, resolved_at = $4, updated_at = $5,
			acknowledged_by = $6, dismissed_by = $7, snapshot = $8
		WHERE id = $1`,
		a.ID, string(a.Severity), string(a.State), a.ResolvedAt, a.UpdatedAt, a.AcknowledgedBy, a.DismissedBy, snap,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListActiveByKey alertas activas (open, acknowledged, dismissed) de la clave.
func (r *AlertRepo) ListActiveByKey(ctx context.Context, key entity.StockKey) ([]*entity.Alert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM stock_alerts
		WHERE item_id = $1 AND location_id = $2 AND state = ANY($3) ORDER BY opened_at, id`,
		key.ItemID, key.LocationID, activeStates)
}

// List alertas según filtro; sin estados explícitos devuelve solo las activas.
func (r *AlertRepo) List(ctx context.Context, f entity.AlertFilter) ([]*entity.Alert, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + alertColumns + ` FROM stock_alerts WHERE state = ANY($1)`)
	states := activeStates
	if len(f.States) > 0 {
		states = make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
	}
	args := []any{states}
	pos := 2
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
	if len(f.Kinds) > 0 {
		kinds := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		fmt.Fprintf(&sb, " AND kind = ANY($%d)", pos)
		args = append(args, kinds)
		pos++
	}
	if f.Severity != "" {
		fmt.Fprintf(&sb, " AND severity = $%d", pos)
		args = append(args, string(f.Severity))
		pos++
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	fmt.Fprintf(&sb, " ORDER BY opened_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.query(ctx, sb.String(), args...)
}

func (r *AlertRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Alert, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	var kind, severity, state string
	var snap []byte
	err := row.Scan(&a.ID, &a.ItemID, &a.LocationID, &kind, &severity, &state,
		&a.OpenedAt, &a.ResolvedAt, &a.UpdatedAt, &a.AcknowledgedBy, &a.DismissedBy, &snap)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snap, &a.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	a.Kind = entity.AlertKind(kind)
	a.Severity = entity.Severity(severity)
	a.State = entity.AlertState(state)
	return &a, nil
}
