package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Condition condición de alerta vigente para una clave.
type Condition struct {
	Kind     entity.AlertKind
	Severity entity.Severity
	Snapshot entity.AlertSnapshot
}

// ConditionOptions valores por defecto del motor cuando la política no los define.
type ConditionOptions struct {
	ExpirationLookaheadDays int
	PriceChangeThresholdPct decimal.Decimal
}

// expiringWarningDays a partir de aquí la alerta de vencimiento sube a warning.
const expiringWarningDays = 3

var half = decimal.NewFromFloat(0.5)

// Conditions clasifica el estado de una clave. Las bandas de cantidad son excluyentes y se
// evalúan sobre la cantidad resultante (ver CrossedBands para las atravesadas por un
// movimiento); expiring y price_change son independientes.
// Sin política solo aplica out_of_stock, y solo si la clave tiene historial.
func Conditions(p *entity.StockProjection, policy *entity.ItemPolicy, batches []*entity.Batch, opts ConditionOptions, now time.Time) []Condition {
	if p == nil {
		return nil
	}
	if policy == nil {
		if p.Version > 0 && !p.Quantity.IsPositive() {
			return []Condition{{
				Kind:     entity.AlertOutOfStock,
				Severity: entity.SeverityCritical,
				Snapshot: entity.AlertSnapshot{Quantity: p.Quantity, Threshold: decimal.Zero},
			}}
		}
		return nil
	}

	var out []Condition
	if c, ok := stockBand(p.Quantity, policy); ok {
		out = append(out, c)
	}
	if c, ok := expiring(p.Quantity, policy, batches, opts, now); ok {
		out = append(out, c)
	}
	if c, ok := priceChange(p, policy, opts); ok {
		out = append(out, c)
	}
	return out
}

// CrossedBands bandas que un descenso de from a to atraviesa sin quedarse en ellas, de la
// menos a la más severa. Excluye la banda de from y la de to. Cada condición lleva como
// cantidad el borde superior de la banda.
func CrossedBands(from, to decimal.Decimal, policy *entity.ItemPolicy) []Condition {
	if policy == nil || !to.LessThan(from) {
		return nil
	}
	lo, hi := bandRank(from, policy), bandRank(to, policy)
	var out []Condition
	seen := make(map[entity.AlertKind]bool, 3)
	for _, edge := range []decimal.Decimal{policy.ReorderPoint, policy.MinStock, policy.MinStock.Mul(half)} {
		c, ok := stockBand(edge, policy)
		if !ok || seen[c.Kind] {
			continue
		}
		seen[c.Kind] = true
		if r := kindRank(c.Kind); r > lo && r < hi {
			out = append(out, c)
		}
	}
	return out
}

// bandRank 0 sin banda; 1 reorder; 2 low_stock; 3 critical_stock; 4 out_of_stock.
func bandRank(q decimal.Decimal, policy *entity.ItemPolicy) int {
	c, ok := stockBand(q, policy)
	if !ok {
		return 0
	}
	return kindRank(c.Kind)
}

func kindRank(k entity.AlertKind) int {
	switch k {
	case entity.AlertReorder:
		return 1
	case entity.AlertLowStock:
		return 2
	case entity.AlertCriticalStock:
		return 3
	case entity.AlertOutOfStock:
		return 4
	}
	return 0
}

func stockBand(q decimal.Decimal, policy *entity.ItemPolicy) (Condition, bool) {
	snap := entity.AlertSnapshot{Quantity: q, MinStock: policy.MinStock, ReorderPoint: policy.ReorderPoint}
	critical := policy.MinStock.Mul(half)
	switch {
	case !q.IsPositive():
		snap.Threshold = decimal.Zero
		return Condition{Kind: entity.AlertOutOfStock, Severity: entity.SeverityCritical, Snapshot: snap}, true
	case q.LessThanOrEqual(critical):
		snap.Threshold = critical
		return Condition{Kind: entity.AlertCriticalStock, Severity: entity.SeverityCritical, Snapshot: snap}, true
	case q.LessThanOrEqual(policy.MinStock):
		snap.Threshold = policy.MinStock
		return Condition{Kind: entity.AlertLowStock, Severity: entity.SeverityWarning, Snapshot: snap}, true
	case q.LessThanOrEqual(policy.ReorderPoint):
		snap.Threshold = policy.ReorderPoint
		return Condition{Kind: entity.AlertReorder, Severity: entity.SeverityInfo, Snapshot: snap}, true
	}
	return Condition{}, false
}

func expiring(q decimal.Decimal, policy *entity.ItemPolicy, batches []*entity.Batch, opts ConditionOptions, now time.Time) (Condition, bool) {
	if !policy.ExpirationTrackingEnabled || len(batches) == 0 {
		return Condition{}, false
	}
	lookahead := policy.ExpirationLookaheadDays
	if lookahead <= 0 {
		lookahead = opts.ExpirationLookaheadDays
	}
	horizon := now.AddDate(0, 0, lookahead)

	var soonest *entity.OnHandBatch
	for _, b := range OnHandBatches(batches, q) {
		if b.ExpiresAt.After(horizon) {
			continue
		}
		if soonest == nil || b.ExpiresAt.Before(soonest.ExpiresAt) {
			soonest = &b
		}
	}
	if soonest == nil {
		return Condition{}, false
	}

	days := DaysRemaining(soonest.ExpiresAt, now)
	sev := entity.SeverityInfo
	switch {
	case days <= 0:
		sev = entity.SeverityCritical
	case days <= expiringWarningDays:
		sev = entity.SeverityWarning
	}
	expiresAt := soonest.ExpiresAt
	return Condition{
		Kind:     entity.AlertExpiring,
		Severity: sev,
		Snapshot: entity.AlertSnapshot{
			Quantity:      soonest.OnHand,
			Threshold:     decimal.NewFromInt(int64(lookahead)),
			MinStock:      policy.MinStock,
			ReorderPoint:  policy.ReorderPoint,
			LotNumber:     soonest.LotNumber,
			ExpiresAt:     &expiresAt,
			DaysRemaining: &days,
		},
	}, true
}

// DaysRemaining días (redondeados hacia arriba) hasta el vencimiento; cero o negativo si ya venció.
func DaysRemaining(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

func priceChange(p *entity.StockProjection, policy *entity.ItemPolicy, opts ConditionOptions) (Condition, bool) {
	if !p.PriorAverageCost.IsPositive() {
		return Condition{}, false
	}
	threshold := policy.PriceChangeThresholdPct
	if !threshold.IsPositive() {
		threshold = opts.PriceChangeThresholdPct
	}
	if !threshold.IsPositive() {
		return Condition{}, false
	}
	if DeviationPct(p.LastUnitCost, p.PriorAverageCost).LessThanOrEqual(threshold) {
		return Condition{}, false
	}
	unit, avg := p.LastUnitCost, p.PriorAverageCost
	return Condition{
		Kind:     entity.AlertPriceChange,
		Severity: entity.SeverityWarning,
		Snapshot: entity.AlertSnapshot{
			Quantity:     p.Quantity,
			Threshold:    threshold,
			MinStock:     policy.MinStock,
			ReorderPoint: policy.ReorderPoint,
			UnitCost:     &unit,
			AverageCost:  &avg,
		},
	}, true
}
