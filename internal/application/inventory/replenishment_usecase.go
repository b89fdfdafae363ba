package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

const replenishmentPageSize = 200

// ReplenishmentList ítems en o bajo su punto de reorden en una ubicación (vacío = todas), con
// su estimación, para precargar órdenes de compra. Orden: primero los que se agotan antes;
// sin tasa de uso van al final, por mayor déficit.
func (uc *ReorderUseCase) ReplenishmentList(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	asOf := uc.now()
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)

	for offset := 0; ; offset += replenishmentPageSize {
		list, err := uc.projections.List(ctx, entity.ProjectionFilter{LocationID: locationID, Limit: replenishmentPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			s, ok, err := uc.suggestion(ctx, p, asOf)
			if err != nil {
				return nil, err
			}
			if ok {
				suggestions = append(suggestions, s)
			}
		}
		if len(list) < replenishmentPageSize {
			break
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		switch {
		case a.DaysUntilEmpty != nil && b.DaysUntilEmpty != nil && !a.DaysUntilEmpty.Equal(*b.DaysUntilEmpty):
			return a.DaysUntilEmpty.LessThan(*b.DaysUntilEmpty)
		case a.DaysUntilEmpty != nil && b.DaysUntilEmpty == nil:
			return true
		case a.DaysUntilEmpty == nil && b.DaysUntilEmpty != nil:
			return false
		}
		defA := a.ReorderPoint.Sub(a.CurrentStock)
		defB := b.ReorderPoint.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.ItemID+a.LocationID < b.ItemID+b.LocationID
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func (uc *ReorderUseCase) suggestion(ctx context.Context, p *entity.StockProjection, asOf time.Time) (dto.ReplenishmentSuggestionDTO, bool, error) {
	policy, err := uc.policies.Resolve(ctx, p.Key())
	if err != nil || policy == nil || p.Quantity.GreaterThan(policy.ReorderPoint) {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}
	est, err := uc.estimate(ctx, p, policy, asOf)
	if err != nil {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}
	item, err := uc.items.GetByID(ctx, p.ItemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}

	qty := decimal.Zero
	if est.SuggestedQuantity != nil {
		qty = *est.SuggestedQuantity
	}
	s := dto.ReplenishmentSuggestionDTO{
		ItemID:               p.ItemID,
		LocationID:           p.LocationID,
		CurrentStock:         p.Quantity,
		ReorderPoint:         policy.ReorderPoint,
		SuggestedOrderQty:    qty,
		UsageRatePerDay:      est.UsageRatePerDay,
		DaysUntilEmpty:       est.DaysUntilEmpty,
		SuggestedReorderDate: est.SuggestedReorderDate,
		UnitCost:             p.AverageCost,
		EstimatedOrderCost:   qty.Mul(p.AverageCost).Round(2),
		PreferredSupplierID:  policy.PreferredSupplierID,
	}
	if item != nil {
		s.SKU = item.SKU
		s.ItemName = item.Name
	}
	return s, true, nil
}
