package inventory

import (
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Apply aplica un movimiento a la proyección y devuelve la nueva proyección (no modifica p).
// Los tipos que agotan stock (venta, consumo, salida por traslado) no pueden dejar la cantidad
// en negativo: devuelven *domain.InsufficientStockError. Un ajuste sí puede, y marca
// HasNegativeCorrection.
func Apply(p *entity.StockProjection, e *entity.MovementEntry) (*entity.StockProjection, error) {
	next := fold(p, e)
	if e.Kind.IsDepleting() && next.Quantity.IsNegative() {
		return nil, &domain.InsufficientStockError{
			ItemID:     e.ItemID,
			LocationID: e.LocationID,
			Available:  p.Quantity,
			Requested:  e.QuantityDelta.Neg(),
		}
	}
	return next, nil
}

// Fold reconstruye la proyección desde cero reproduciendo el historial en orden de anexado.
// No rechaza negativos: el historial ya fue aceptado y la reconstrucción debe coincidir con él.
func Fold(key entity.StockKey, entries []*entity.MovementEntry) *entity.StockProjection {
	p := entity.ZeroProjection(key)
	for _, e := range entries {
		p = fold(p, e)
	}
	return p
}

func fold(p *entity.StockProjection, e *entity.MovementEntry) *entity.StockProjection {
	next := *p
	next.Quantity = p.Quantity.Add(e.QuantityDelta)
	if e.Kind == entity.KindAdjustment && next.Quantity.IsNegative() {
		next.HasNegativeCorrection = true
	}
	if e.Kind == entity.KindReceive && e.UnitCost != nil {
		next.PriorAverageCost = p.AverageCost
		next.AverageCost = WeightedAverageCost(p.Quantity, p.AverageCost, e.QuantityDelta, *e.UnitCost)
		next.LastUnitCost = *e.UnitCost
	}
	next.Version = p.Version + 1
	next.LastMovementID = e.ID
	next.LastUpdated = e.Timestamp
	return &next
}
