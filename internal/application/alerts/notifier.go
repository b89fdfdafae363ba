package alerts

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Notifier canal de salida de las notificaciones (Kafka, log). Best-effort: un error no
// revierte el estado de la alerta.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event) error
}

// SubscribeNotifier conecta el notificador a los eventos de alertas y reorden.
func SubscribeNotifier(sub events.Subscriber, n Notifier) {
	h := func(ctx context.Context, ev events.Event) error { return n.Notify(ctx, ev) }
	sub.Subscribe(events.AlertOpened, h)
	sub.Subscribe(events.AlertResolved, h)
	sub.Subscribe(events.ReorderSuggested, h)
}

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier escribe las notificaciones en el log (cuando no hay broker configurado).
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, ev events.Event) error {
	e := n.log.Info().Str("event", string(ev.Type)).Str("item_id", ev.Key.ItemID).Str("location_id", ev.Key.LocationID)
	if ev.Alert != nil {
		e = e.Str("alert_id", ev.Alert.ID).Str("kind", string(ev.Alert.Kind)).Str("severity", string(ev.Alert.Severity))
	}
	if ev.Estimate != nil && ev.Estimate.SuggestedQuantity != nil {
		e = e.Str("suggested_quantity", ev.Estimate.SuggestedQuantity.String())
	}
	e.Msg("notificación de inventario")
	return nil
}
