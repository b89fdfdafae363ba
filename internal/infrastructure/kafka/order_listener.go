package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// EventOrderCreated tipo de evento que descuenta stock.
const EventOrderCreated = "OrderCreated"

// MessageReader lo que el listener necesita de *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// SaleRecorder registra la venta de una línea de pedido.
type SaleRecorder interface {
	RecordSale(ctx context.Context, itemID, locationID string, qty decimal.Decimal, referenceID string) (*entity.MovementEntry, error)
}

// OrderCreatedEvent evento del servicio de pedidos.
type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

// OrderPayload pedido; StoreID es la ubicación que despacha.
type OrderPayload struct {
	ID      string             `json:"id"`
	StoreID string             `json:"store_id"`
	Items   []OrderItemPayload `json:"items"`
}

// OrderItemPayload línea del pedido.
type OrderItemPayload struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// OrderListener consume pedidos creados y registra una venta por ítem con el ID del pedido
// como referencia. La entrega de Kafka es al menos una vez: una línea ya registrada se omite.
type OrderListener struct {
	reader    MessageReader
	sales     SaleRecorder
	movements repository.MovementRepository
	log       *logger.Logger
}

// NewReader construye el *kafka.Reader del grupo de consumo.
func NewReader(brokers []string, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// NewOrderListener construye el listener.
func NewOrderListener(reader MessageReader, sales SaleRecorder, movRepo repository.MovementRepository, log *logger.Logger) *OrderListener {
	return &OrderListener{reader: reader, sales: sales, movements: movRepo, log: log.Component("order_listener")}
}

// Start lee mensajes hasta que ctx se cancele.
func (l *OrderListener) Start(ctx context.Context) {
	l.log.Info().Msg("listener de pedidos iniciado")
	defer func() {
		if err := l.reader.Close(); err != nil {
			l.log.Warn().Err(err).Msg("cerrar reader de pedidos")
		}
	}()
	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info().Msg("listener de pedidos detenido")
				return
			}
			l.log.Error().Err(err).Msg("leer mensaje de kafka")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if err := l.Process(ctx, msg.Value); err != nil {
			l.log.Error().Err(err).Int64("offset", msg.Offset).Msg("procesar pedido")
		}
	}
}

// Process aplica un mensaje. Devuelve error solo si el mensaje no se pudo interpretar;
// los fallos por línea se registran y no detienen el resto del pedido.
func (l *OrderListener) Process(ctx context.Context, value []byte) error {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("unmarshal order event: %w", err)
	}
	if ev.EventType != EventOrderCreated {
		return nil
	}
	if ev.Payload.ID == "" || ev.Payload.StoreID == "" {
		return domain.ErrInvalidInput
	}

	ctx = ledger.WithActor(ctx, entity.ActorSystem)
	for _, line := range mergeLines(ev.Payload.Items) {
		key := entity.StockKey{ItemID: line.ProductID, LocationID: ev.Payload.StoreID}
		done, err := l.movements.ExistsByReference(ctx, key, entity.KindSale, ev.Payload.ID)
		if err != nil {
			return err
		}
		if done {
			l.log.Debug().Str("order_id", ev.Payload.ID).Str("item_id", line.ProductID).Msg("línea ya registrada")
			continue
		}
		if _, err := l.sales.RecordSale(ctx, line.ProductID, ev.Payload.StoreID, line.Quantity, ev.Payload.ID); err != nil {
			entry := l.log.Error()
			if errors.Is(err, domain.ErrInsufficientStock) {
				entry = l.log.Warn()
			}
			entry.Err(err).Str("order_id", ev.Payload.ID).Str("item_id", line.ProductID).Msg("venta de pedido rechazada")
		}
	}
	return nil
}

// mergeLines suma las líneas repetidas de un mismo producto, conservando el orden.
func mergeLines(items []OrderItemPayload) []OrderItemPayload {
	idx := make(map[string]int, len(items))
	out := make([]OrderItemPayload, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			continue
		}
		if i, ok := idx[it.ProductID]; ok {
			out[i].Quantity = out[i].Quantity.Add(it.Quantity)
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
