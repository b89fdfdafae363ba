package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReorderStrategy estrategia para la cantidad sugerida de pedido.
type ReorderStrategy string

const (
	ReorderFixed          ReorderStrategy = "fixed"            // ReorderQuantity
	ReorderReplenishToMax ReorderStrategy = "replenish_to_max" // MaxStock - stock actual
)

// ItemPolicy configuración de umbrales por ítem. LocationID vacío = política general del ítem;
// una política con LocationID tiene prioridad para esa ubicación.
type ItemPolicy struct {
	ItemID                    string          `json:"item_id"`
	LocationID                string          `json:"location_id,omitempty"`
	MinStock                  decimal.Decimal `json:"min_stock"`
	MaxStock                  decimal.Decimal `json:"max_stock"`
	ReorderPoint              decimal.Decimal `json:"reorder_point"`
	ReorderQuantity           decimal.Decimal `json:"reorder_quantity"`
	ReorderStrategy           ReorderStrategy `json:"reorder_strategy"`
	ExpirationTrackingEnabled bool            `json:"expiration_tracking_enabled"`
	ExpirationLookaheadDays   int             `json:"expiration_lookahead_days,omitempty"` // 0 = valor por defecto del motor
	PriceChangeThresholdPct   decimal.Decimal `json:"price_change_threshold_pct"`          // 0 = valor por defecto del motor
	AutoReorder               bool            `json:"auto_reorder"`
	PreferredSupplierID       string          `json:"preferred_supplier_id,omitempty"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}
