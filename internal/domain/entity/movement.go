package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de stock.
type MovementKind string

// Tipos de movimiento.
const (
	KindReceive     MovementKind = "receive"
	KindSale        MovementKind = "sale"
	KindUsage       MovementKind = "usage"
	KindAdjustment  MovementKind = "adjustment"
	KindTransferOut MovementKind = "transfer-out"
	KindTransferIn  MovementKind = "transfer-in"
	KindReturn      MovementKind = "return"
)

// ActorSystem actor de los movimientos generados por el propio sistema.
const ActorSystem = "system"

// Valid indica si el tipo pertenece al conjunto cerrado.
func (k MovementKind) Valid() bool {
	switch k {
	case KindReceive, KindSale, KindUsage, KindAdjustment, KindTransferOut, KindTransferIn, KindReturn:
		return true
	}
	return false
}

// IsDepleting: venta, consumo y salida por traslado no pueden dejar la proyección en negativo.
func (k MovementKind) IsDepleting() bool {
	return k == KindSale || k == KindUsage || k == KindTransferOut
}

// IsInbound: tipos cuyo delta debe ser positivo.
func (k MovementKind) IsInbound() bool {
	return k == KindReceive || k == KindTransferIn || k == KindReturn
}

// IsConsumption: tipos que cuentan para la tasa de uso del cálculo de reorden.
func (k MovementKind) IsConsumption() bool {
	return k == KindSale || k == KindUsage
}

// MovementEntry hecho inmutable del registro de movimientos.
// Una vez anexado nunca se modifica; las correcciones son nuevos movimientos compensatorios.
type MovementEntry struct {
	ID              string          `json:"id"` // ULID, ordenable por tiempo
	ItemID          string          `json:"item_id"`
	LocationID      string          `json:"location_id"`
	QuantityDelta   decimal.Decimal `json:"quantity_delta"`
	Kind            MovementKind    `json:"kind"`
	Reason          string          `json:"reason,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Actor           string          `json:"actor"`
	Timestamp       time.Time       `json:"timestamp"`
	TransferGroupID string          `json:"transfer_group_id,omitempty"`

	// Solo en recepciones.
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	LotNumber string           `json:"lot_number,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// Key devuelve la clave (ítem, ubicación) del movimiento.
func (m *MovementEntry) Key() StockKey {
	return StockKey{ItemID: m.ItemID, LocationID: m.LocationID}
}

// HistoryRange filtro temporal del historial de movimientos. Extremos opcionales e inclusivos.
type HistoryRange struct {
	From *time.Time
	To   *time.Time
}

// HistoryQuery consulta paginada del historial (más reciente primero).
// Before es el cursor: ID del último movimiento de la página anterior.
type HistoryQuery struct {
	Range  HistoryRange
	Before string
	Limit  int
}
