package dto

import "github.com/shopspring/decimal"

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	ID      string `json:"id,omitempty"` // opcional; si no, uuid
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Code     string `json:"code"`
}

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	ID          string `json:"id,omitempty"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	CategoryID  string `json:"category_id,omitempty"`
	UnitMeasure string `json:"unit_measure"`
}

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name         string `json:"name"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// PolicyRequest body para PUT /api/items/:id/policy. LocationID vacío = política general.
type PolicyRequest struct {
	LocationID                string          `json:"location_id,omitempty"`
	MinStock                  decimal.Decimal `json:"min_stock"`
	MaxStock                  decimal.Decimal `json:"max_stock"`
	ReorderPoint              decimal.Decimal `json:"reorder_point"`
	ReorderQuantity           decimal.Decimal `json:"reorder_quantity"`
	ReorderStrategy           string          `json:"reorder_strategy,omitempty"`
	ExpirationTrackingEnabled bool            `json:"expiration_tracking_enabled"`
	ExpirationLookaheadDays   int             `json:"expiration_lookahead_days,omitempty"`
	PriceChangeThresholdPct   decimal.Decimal `json:"price_change_threshold_pct"`
	AutoReorder               bool            `json:"auto_reorder"`
	PreferredSupplierID       string          `json:"preferred_supplier_id,omitempty"`
}

// ListResponse lista paginada genérica.
type ListResponse[T any] struct {
	Items []T          `json:"items"`
	Page  PageResponse `json:"page"`
}
