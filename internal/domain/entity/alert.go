package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertKind tipo de alerta. Las bandas de stock son mutuamente excluyentes entre sí;
// expiring y price_change son dimensiones ortogonales.
type AlertKind string

const (
	AlertOutOfStock    AlertKind = "out_of_stock"
	AlertCriticalStock AlertKind = "critical_stock"
	AlertLowStock      AlertKind = "low_stock"
	AlertReorder       AlertKind = "reorder"
	AlertExpiring      AlertKind = "expiring"
	AlertPriceChange   AlertKind = "price_change"
)

// IsStockBand indica si el tipo es una banda de cantidad.
func (k AlertKind) IsStockBand() bool {
	switch k {
	case AlertOutOfStock, AlertCriticalStock, AlertLowStock, AlertReorder:
		return true
	}
	return false
}

// Severity severidad de la alerta.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertState estado del ciclo de vida.
type AlertState string

const (
	AlertOpen         AlertState = "open"
	AlertAcknowledged AlertState = "acknowledged"
	AlertDismissed    AlertState = "dismissed"
	AlertResolved     AlertState = "resolved"
)

// Active: abierta, reconocida o descartada. Como máximo una activa por clave de deduplicación.
func (s AlertState) Active() bool {
	return s == AlertOpen || s == AlertAcknowledged || s == AlertDismissed
}

// AlertSnapshot valores al momento de la evaluación, para mostrar sin reconsultar.
type AlertSnapshot struct {
	Quantity      decimal.Decimal  `json:"quantity"`
	Threshold     decimal.Decimal  `json:"threshold"`
	MinStock      decimal.Decimal  `json:"min_stock"`
	ReorderPoint  decimal.Decimal  `json:"reorder_point"`
	LotNumber     string           `json:"lot_number,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	DaysRemaining *int             `json:"days_remaining,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	AverageCost   *decimal.Decimal `json:"average_cost,omitempty"`
}

// Equal compara por valor (decimales con Equal, punteros por contenido).
func (s AlertSnapshot) Equal(o AlertSnapshot) bool {
	if !s.Quantity.Equal(o.Quantity) || !s.Threshold.Equal(o.Threshold) ||
		!s.MinStock.Equal(o.MinStock) || !s.ReorderPoint.Equal(o.ReorderPoint) ||
		s.LotNumber != o.LotNumber {
		return false
	}
	if (s.ExpiresAt == nil) != (o.ExpiresAt == nil) || (s.ExpiresAt != nil && !s.ExpiresAt.Equal(*o.ExpiresAt)) {
		return false
	}
	if (s.DaysRemaining == nil) != (o.DaysRemaining == nil) || (s.DaysRemaining != nil && *s.DaysRemaining != *o.DaysRemaining) {
		return false
	}
	return decimalPtrEqual(s.UnitCost, o.UnitCost) && decimalPtrEqual(s.AverageCost, o.AverageCost)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Alert alerta con estado, una activa por (ItemID, LocationID, Kind).
type Alert struct {
	ID             string        `json:"id"`
	ItemID         string        `json:"item_id"`
	LocationID     string        `json:"location_id"`
	Kind           AlertKind     `json:"kind"`
	Severity       Severity      `json:"severity"`
	State          AlertState    `json:"state"`
	OpenedAt       time.Time     `json:"opened_at"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
	AcknowledgedBy string        `json:"acknowledged_by,omitempty"`
	DismissedBy    string        `json:"dismissed_by,omitempty"`
	Snapshot       AlertSnapshot `json:"snapshot"`
}

// DedupeKey clave de deduplicación.
func (a *Alert) DedupeKey() AlertKey {
	return AlertKey{ItemID: a.ItemID, LocationID: a.LocationID, Kind: a.Kind}
}

// AlertKey (ítem, ubicación, tipo).
type AlertKey struct {
	ItemID     string
	LocationID string
	Kind       AlertKind
}

// String "item|location|kind".
func (k AlertKey) String() string {
	return k.ItemID + "|" + k.LocationID + "|" + string(k.Kind)
}

// AlertFilter filtro de listado. States vacío = estados activos.
type AlertFilter struct {
	ItemID     string
	LocationID string
	Kinds      []AlertKind
	States     []AlertState
	Severity   Severity
	Limit      int
	Offset     int
}
