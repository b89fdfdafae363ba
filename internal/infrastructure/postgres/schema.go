package postgres

import (
	"context"
	"fmt"
)

// schema DDL idempotente. stock_movements es de solo anexado: las reglas descartan UPDATE y DELETE.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		address    TEXT NOT NULL DEFAULT '',
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         TEXT PRIMARY KEY,
		parent_id  TEXT REFERENCES categories (id),
		name       TEXT NOT NULL,
		code       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id           TEXT PRIMARY KEY,
		sku          TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		category_id  TEXT REFERENCES categories (id),
		unit_measure TEXT NOT NULL DEFAULT 'und',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		lead_time_days INT NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id                TEXT PRIMARY KEY,
		item_id           TEXT NOT NULL,
		location_id       TEXT NOT NULL,
		quantity_delta    NUMERIC(20,6) NOT NULL,
		kind              TEXT NOT NULL,
		reason            TEXT NOT NULL DEFAULT '',
		reference_id      TEXT NOT NULL DEFAULT '',
		actor             TEXT NOT NULL,
		occurred_at       TIMESTAMPTZ NOT NULL,
		transfer_group_id TEXT NOT NULL DEFAULT '',
		unit_cost         NUMERIC(20,6),
		lot_number        TEXT NOT NULL DEFAULT '',
		expires_at        TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_key ON stock_movements (item_id, location_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_group ON stock_movements (transfer_group_id) WHERE transfer_group_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_ref ON stock_movements (item_id, location_id, kind, reference_id) WHERE reference_id <> ''`,
	`CREATE OR REPLACE RULE stock_movements_no_update AS ON UPDATE TO stock_movements DO INSTEAD NOTHING`,
	`CREATE OR REPLACE RULE stock_movements_no_delete AS ON DELETE TO stock_movements DO INSTEAD NOTHING`,
	`CREATE TABLE IF NOT EXISTS stock_projections (
		item_id                 TEXT NOT NULL,
		location_id             TEXT NOT NULL,
		quantity                NUMERIC(20,6) NOT NULL,
		version                 BIGINT NOT NULL,
		last_movement_id        TEXT NOT NULL DEFAULT '',
		last_updated            TIMESTAMPTZ NOT NULL,
		has_negative_correction BOOLEAN NOT NULL DEFAULT FALSE,
		average_cost            NUMERIC(20,6) NOT NULL DEFAULT 0,
		last_unit_cost          NUMERIC(20,6) NOT NULL DEFAULT 0,
		prior_average_cost      NUMERIC(20,6) NOT NULL DEFAULT 0,
		PRIMARY KEY (item_id, location_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_projections_location ON stock_projections (location_id)`,
	`CREATE TABLE IF NOT EXISTS stock_batches (
		movement_id TEXT PRIMARY KEY,
		item_id     TEXT NOT NULL,
		location_id TEXT NOT NULL,
		lot_number  TEXT NOT NULL DEFAULT '',
		expires_at  TIMESTAMPTZ NOT NULL,
		quantity    NUMERIC(20,6) NOT NULL,
		received_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_batches_key ON stock_batches (item_id, location_id, received_at)`,
	`CREATE TABLE IF NOT EXISTS item_policies (
		item_id                     TEXT NOT NULL,
		location_id                 TEXT NOT NULL DEFAULT '',
		min_stock                   NUMERIC(20,6) NOT NULL DEFAULT 0,
		max_stock                   NUMERIC(20,6) NOT NULL DEFAULT 0,
		reorder_point               NUMERIC(20,6) NOT NULL DEFAULT 0,
		reorder_quantity            NUMERIC(20,6) NOT NULL DEFAULT 0,
		reorder_strategy            TEXT NOT NULL DEFAULT 'fixed',
		expiration_tracking_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		expiration_lookahead_days   INT NOT NULL DEFAULT 0,
		price_change_threshold_pct  NUMERIC(10,4) NOT NULL DEFAULT 0,
		auto_reorder                BOOLEAN NOT NULL DEFAULT FALSE,
		preferred_supplier_id       TEXT NOT NULL DEFAULT '',
		updated_at                  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (item_id, location_id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_alerts (
		id              TEXT PRIMARY KEY,
		item_id         TEXT NOT NULL,
		location_id     TEXT NOT NULL,
		kind            TEXT NOT NULL,
		severity        TEXT NOT NULL,
		state           TEXT NOT NULL,
		opened_at       TIMESTAMPTZ NOT NULL,
		resolved_at     TIMESTAMPTZ,
		updated_at      TIMESTAMPTZ NOT NULL,
		acknowledged_by TEXT NOT NULL DEFAULT '',
		dismissed_by    TEXT NOT NULL DEFAULT '',
		snapshot        JSONB NOT NULL
	)`,
	// Una sola alerta activa por (ítem, ubicación, tipo)
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_stock_alerts_active ON stock_alerts (item_id, location_id, kind)
		WHERE state IN ('open', 'acknowledged', 'dismissed')`,
	`CREATE INDEX IF NOT EXISTS idx_stock_alerts_opened ON stock_alerts (opened_at DESC)`,
}

// EnsureSchema crea tablas, índices y reglas si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema %d: %w", i, err)
		}
	}
	return nil
}
