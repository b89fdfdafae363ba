package events

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// Type tipo de evento interno.
type Type string

const (
	AppliedMovement   Type = "applied_movement"
	ProjectionChanged Type = "projection_changed"
	AlertOpened       Type = "alert_opened"
	AlertResolved     Type = "alert_resolved"
	ReorderSuggested  Type = "reorder_suggested"
)

// Event evento publicado después de confirmar el cambio que lo origina.
// Solo se rellenan los campos que aplican al tipo.
type Event struct {
	Type       Type                    `json:"type"`
	Key        entity.StockKey         `json:"key"`
	Movement   *entity.MovementEntry   `json:"movement,omitempty"`
	Projection *entity.StockProjection `json:"projection,omitempty"`
	Alert      *entity.Alert           `json:"alert,omitempty"`
	Estimate   *inventory.Estimate     `json:"estimate,omitempty"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// Handler consumidor de eventos. Debe ser idempotente: la entrega es al menos una vez.
type Handler func(ctx context.Context, ev Event) error

// Publisher puerto de publicación. Publish no bloquea al llamador ni devuelve error:
// la entrega es un canal secundario que nunca revierte el estado ya confirmado.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Subscriber registro de handlers por tipo.
type Subscriber interface {
	Subscribe(t Type, h Handler)
}
