package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey clave de proyección: un ítem en una ubicación.
type StockKey struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
}

// String forma canónica "item|location", usada para ordenar bloqueos y como clave de mapas externos.
func (k StockKey) String() string {
	return k.ItemID + "|" + k.LocationID
}

// StockProjection stock actual derivado del historial para (ítem, ubicación).
// Quantity debe ser igual a la suma de todos los QuantityDelta de la clave; se puede reconstruir en cualquier momento.
type StockProjection struct {
	ItemID                string          `json:"item_id"`
	LocationID            string          `json:"location_id"`
	Quantity              decimal.Decimal `json:"quantity"`
	Version               int64           `json:"version"` // concurrencia optimista
	LastMovementID        string          `json:"last_movement_id"`
	LastUpdated           time.Time       `json:"last_updated"`
	HasNegativeCorrection bool            `json:"has_negative_correction"`

	// Costo promedio ponderado plegado desde las recepciones con costo.
	AverageCost      decimal.Decimal `json:"average_cost"`
	LastUnitCost     decimal.Decimal `json:"last_unit_cost"`
	PriorAverageCost decimal.Decimal `json:"prior_average_cost"`
}

// Key devuelve la clave de la proyección.
func (p *StockProjection) Key() StockKey {
	return StockKey{ItemID: p.ItemID, LocationID: p.LocationID}
}

// ZeroProjection estado inicial de una clave sin historial.
func ZeroProjection(key StockKey) *StockProjection {
	return &StockProjection{
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		Quantity:   decimal.Zero,
	}
}

// ProjectionFilter filtro para listar proyecciones (barridos, lista de reposición).
type ProjectionFilter struct {
	ItemID     string
	LocationID string
	Limit      int
	Offset     int
}
