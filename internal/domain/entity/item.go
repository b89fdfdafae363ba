package entity

import "time"

// Item artículo del catálogo (referencia; la lógica de stock vive en el registro de movimientos).
type Item struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"category_id,omitempty"`
	UnitMeasure string    `json:"unit_measure"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Supplier proveedor; LeadTimeDays alimenta la fecha sugerida de reorden.
type Supplier struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LeadTimeDays int       `json:"lead_time_days"`
	CreatedAt    time.Time `json:"created_at"`
}
