package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

var _ alerts.Notifier = (*Publisher)(nil)

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Notification mensaje publicado en el tópico de alertas.
type Notification struct {
	EventType  string              `json:"event_type"`
	ItemID     string              `json:"item_id"`
	LocationID string              `json:"location_id"`
	Alert      *entity.Alert       `json:"alert,omitempty"`
	Estimate   *inventory.Estimate `json:"estimate,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher publica alertas y sugerencias de reorden en Kafka, con la clave (ítem, ubicación)
// como key del mensaje para conservar el orden por partición.
type Publisher struct {
	w   MessageWriter
	log *logger.Logger
}

// NewWriter construye el *kafka.Writer del tópico.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewPublisher construye el publicador sobre un writer.
func NewPublisher(w MessageWriter, log *logger.Logger) *Publisher {
	return &Publisher{w: w, log: log.Component("kafka_publisher")}
}

// Notify implementa alerts.Notifier.
func (p *Publisher) Notify(ctx context.Context, ev events.Event) error {
	value, err := json.Marshal(Notification{
		EventType:  string(ev.Type),
		ItemID:     ev.Key.ItemID,
		LocationID: ev.Key.LocationID,
		Alert:      ev.Alert,
		Estimate:   ev.Estimate,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := kafkago.Message{Key: []byte(ev.Key.String()), Value: value, Time: ev.OccurredAt}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	p.log.Debug().Str("event", string(ev.Type)).Str("key", ev.Key.String()).Msg("notificación publicada")
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
