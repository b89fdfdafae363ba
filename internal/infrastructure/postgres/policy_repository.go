package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

// PolicyRepo políticas de stock por ítem (generales o por ubicación).
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador.
func NewPolicyRepository(q Querier) *PolicyRepo {
	return &PolicyRepo{q: q}
}

func (r *PolicyRepo) Upsert(ctx context.Context, p *entity.ItemPolicy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO item_policies (item_id, location_id, min_stock, max_stock, reorder_point, reorder_quantity,
			reorder_strategy, expiration_tracking_enabled, expiration_lookahead_days, price_change_threshold_pct,
			auto_reorder, preferred_supplier_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (item_id, location_id) DO UPDATE SET
			min_stock = EXCLUDED.min_stock, max_stock = EXCLUDED.max_stock,
			reorder_point = EXCLUDED.reorder_point, reorder_quantity = EXCLUDED.reorder_quantity,
			reorder_strategy = EXCLUDED.reorder_strategy,
			expiration_tracking_enabled = EXCLUDED.expiration_tracking_enabled,
			expiration_lookahead_days = EXCLUDED.expiration_lookahead_days,
			price_change_threshold_pct = EXCLUDED.price_change_threshold_pct,
			auto_reorder = EXCLUDED.auto_reorder, preferred_supplier_id = EXCLUDED.preferred_supplier_id,
			updated_at = EXCLUDED.updated_at`,
		p.ItemID, p.LocationID, p.MinStock, p.MaxStock, p.ReorderPoint, p.ReorderQuantity,
		string(p.ReorderStrategy), p.ExpirationTrackingEnabled, p.ExpirationLookaheadDays, p.PriceChangeThresholdPct,
		p.AutoReorder, p.PreferredSupplierID, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}

// Resolve política por ubicación si existe; si no, la general del ítem; nil si no hay ninguna.
func (r *PolicyRepo) Resolve(ctx context.Context, key entity.StockKey) (*entity.ItemPolicy, error) {
	var p entity.ItemPolicy
	var strategy string
	err := r.q.QueryRow(ctx, `
		SELECT item_id, location_id, min_stock, max_stock, reorder_point, reorder_quantity, reorder_strategy,
			expiration_tracking_enabled, expiration_lookahead_days, price_change_threshold_pct,
			auto_reorder, preferred_supplier_id, updated_at
		FROM item_policies
		WHERE item_id = $1 AND location_id IN ($2, '')
		ORDER BY location_id DESC LIMIT 1`,
		key.ItemID, key.LocationID,
	).Scan(&p.ItemID, &p.LocationID, &p.MinStock, &p.MaxStock, &p.ReorderPoint, &p.ReorderQuantity, &strategy,
		&p.ExpirationTrackingEnabled, &p.ExpirationLookaheadDays, &p.PriceChangeThresholdPct,
		&p.AutoReorder, &p.PreferredSupplierID, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve policy: %w", err)
	}
	p.ReorderStrategy = entity.ReorderStrategy(strategy)
	return &p, nil
}
