package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ReceiptRequest body para POST /api/inventory/receipts.
type ReceiptRequest struct {
	ItemID      string           `json:"item_id"`
	LocationID  string           `json:"location_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	ReferenceID string           `json:"reference_id,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	LotNumber   string           `json:"lot_number,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// SaleRequest body para POST /api/inventory/sales y /returns.
type SaleRequest struct {
	ItemID      string          `json:"item_id"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// UsageRequest body para POST /api/inventory/usages.
type UsageRequest struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments. Delta con signo.
type AdjustmentRequest struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Delta      decimal.Decimal `json:"delta"`
	Reason     string          `json:"reason"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ItemID         string          `json:"item_id"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// MovementResponse respuesta de un movimiento registrado.
type MovementResponse struct {
	MovementID string          `json:"movement_id"`
	Kind       string          `json:"kind"`
	Delta      decimal.Decimal `json:"delta"`
	Timestamp  time.Time       `json:"timestamp"`
}

// TransferResponse respuesta de un traslado.
type TransferResponse struct {
	TransferGroupID string `json:"transfer_group_id"`
}

// HistoryResponse página del historial de movimientos.
type HistoryResponse struct {
	Items      []*entity.MovementEntry `json:"items"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ItemID               string           `json:"item_id"`
	SKU                  string           `json:"sku"`
	ItemName             string           `json:"item_name"`
	LocationID           string           `json:"location_id"`
	CurrentStock         decimal.Decimal  `json:"current_stock"`
	ReorderPoint         decimal.Decimal  `json:"reorder_point"`
	SuggestedOrderQty    decimal.Decimal  `json:"suggested_order_qty"`
	UsageRatePerDay      decimal.Decimal  `json:"usage_rate_per_day"`
	DaysUntilEmpty       *decimal.Decimal `json:"days_until_empty,omitempty"`
	SuggestedReorderDate *time.Time       `json:"suggested_reorder_date,omitempty"`
	UnitCost             decimal.Decimal  `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost   decimal.Decimal  `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	PreferredSupplierID  string           `json:"preferred_supplier_id,omitempty"`
	Priority             int              `json:"priority"` // 1 = más urgente
}
