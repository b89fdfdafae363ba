package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// AutoReorder publica ReorderSuggested cuando se abre una alerta de banda de stock para un
// ítem con AutoReorder activo. El sistema de compras consume la sugerencia.
type AutoReorder struct {
	reorder   *ReorderUseCase
	publisher events.Publisher
	log       *logger.Logger
}

// NewAutoReorder construye el handler.
func NewAutoReorder(reorder *ReorderUseCase, publisher events.Publisher, log *logger.Logger) *AutoReorder {
	return &AutoReorder{reorder: reorder, publisher: publisher, log: log.Component("auto_reorder")}
}

// Handle handler del bus para AlertOpened.
func (a *AutoReorder) Handle(ctx context.Context, ev events.Event) error {
	if ev.Alert == nil || !ev.Alert.Kind.IsStockBand() {
		return nil
	}
	policy, err := a.reorder.policies.Resolve(ctx, ev.Key)
	if err != nil {
		return err
	}
	if policy == nil || !policy.AutoReorder {
		return nil
	}
	est, err := a.reorder.Estimate(ctx, ev.Key, a.reorder.now())
	if err != nil {
		return err
	}
	if est.SuggestedQuantity == nil || !est.SuggestedQuantity.IsPositive() {
		return nil
	}
	a.log.Info().Str("item_id", ev.Key.ItemID).Str("location_id", ev.Key.LocationID).
		Str("suggested_quantity", est.SuggestedQuantity.String()).Msg("reorden sugerido")
	a.publisher.Publish(ctx, events.Event{Type: events.ReorderSuggested, Key: ev.Key, Alert: ev.Alert, Estimate: est, OccurredAt: est.AsOf})
	return nil
}
