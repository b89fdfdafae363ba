package inventory

import (
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OnHandBatches deriva qué lotes siguen en existencia con salida FIFO: el stock actual
// corresponde a las recepciones más recientes. batches debe venir en orden de recepción
// ascendente; el resultado va del más reciente al más antiguo.
func OnHandBatches(batches []*entity.Batch, quantity decimal.Decimal) []entity.OnHandBatch {
	var out []entity.OnHandBatch
	remaining := quantity
	for i := len(batches) - 1; i >= 0 && remaining.IsPositive(); i-- {
		b := batches[i]
		onHand := decimal.Min(b.Quantity, remaining)
		out = append(out, entity.OnHandBatch{Batch: *b, OnHand: onHand})
		remaining = remaining.Sub(onHand)
	}
	return out
}
