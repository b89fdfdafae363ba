package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote recibido con fecha de vencimiento. Se crea con la recepción y nunca se modifica;
// qué parte sigue en existencia se deriva (FIFO) de la proyección.
type Batch struct {
	MovementID string          `json:"movement_id"`
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	LotNumber  string          `json:"lot_number"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Quantity   decimal.Decimal `json:"quantity"`
	ReceivedAt time.Time       `json:"received_at"`
}

// OnHandBatch porción de un lote que sigue en existencia.
type OnHandBatch struct {
	Batch
	OnHand decimal.Decimal `json:"on_hand"`
}
