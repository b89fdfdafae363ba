package inventory

import (
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultUsageWindowDays ventana por defecto para la tasa de uso.
const DefaultUsageWindowDays = 7

// Estimate sugerencia de reorden para una clave. Los campos puntero son nil cuando no se
// pueden derivar (uso cero, sin política o sin datos).
type Estimate struct {
	ItemID               string           `json:"item_id"`
	LocationID           string           `json:"location_id"`
	Quantity             decimal.Decimal  `json:"quantity"`
	UsageRatePerDay      decimal.Decimal  `json:"usage_rate_per_day"`
	DaysUntilEmpty       *decimal.Decimal `json:"days_until_empty,omitempty"`
	SuggestedReorderDate *time.Time       `json:"suggested_reorder_date,omitempty"`
	SuggestedQuantity    *decimal.Decimal `json:"suggested_quantity,omitempty"`
	WindowDays           int              `json:"window_days"`
	LeadTimeDays         int              `json:"lead_time_days"`
	InsufficientData     bool             `json:"insufficient_data"`
	AsOf                 time.Time        `json:"as_of"`
}

// EstimateInput datos que necesita EstimateReorder; el llamador los lee del almacenamiento.
type EstimateInput struct {
	Projection      *entity.StockProjection
	Policy          *entity.ItemPolicy
	Movements       []*entity.MovementEntry // al menos los de la ventana; se filtran por fecha y tipo
	FirstMovementAt *time.Time
	WindowDays      int
	LeadTimeDays    int
	AsOf            time.Time
}

// WindowStart inicio de la ventana que debe cubrir EstimateInput.Movements.
func WindowStart(asOf time.Time, windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = DefaultUsageWindowDays
	}
	return asOf.AddDate(0, 0, -windowDays)
}

// EstimateReorder calcula tasa de uso, días hasta agotarse, fecha y cantidad sugeridas.
// Es de solo lectura y nunca falla: sin historial devuelve InsufficientData.
func EstimateReorder(in EstimateInput) Estimate {
	p := in.Projection
	est := Estimate{
		ItemID:          p.ItemID,
		LocationID:      p.LocationID,
		Quantity:        p.Quantity,
		UsageRatePerDay: decimal.Zero,
		LeadTimeDays:    in.LeadTimeDays,
		AsOf:            in.AsOf,
	}
	est.SuggestedQuantity = suggestedQuantity(p.Quantity, in.Policy)

	window := in.WindowDays
	if window <= 0 {
		window = DefaultUsageWindowDays
	}
	if in.FirstMovementAt == nil {
		est.WindowDays = window
		est.InsufficientData = true
		return est
	}
	if span := in.AsOf.Sub(*in.FirstMovementAt); span < time.Duration(window)*24*time.Hour {
		window = int(decimal.NewFromFloat(span.Hours() / 24).Ceil().IntPart())
		if window < 1 {
			window = 1
		}
	}
	est.WindowDays = window

	from := in.AsOf.AddDate(0, 0, -window)
	used := decimal.Zero
	for _, m := range in.Movements {
		if !m.Kind.IsConsumption() || m.Timestamp.Before(from) || m.Timestamp.After(in.AsOf) {
			continue
		}
		used = used.Add(m.QuantityDelta.Abs())
	}
	est.UsageRatePerDay = used.DivRound(decimal.NewFromInt(int64(window)), 4)
	if !est.UsageRatePerDay.IsPositive() {
		return est
	}

	days := decimal.Zero
	if p.Quantity.IsPositive() {
		days = p.Quantity.DivRound(est.UsageRatePerDay, 2)
	}
	est.DaysUntilEmpty = &days

	lead := decimal.NewFromInt(int64(in.LeadTimeDays))
	seconds := days.Sub(lead).Mul(decimal.NewFromInt(86400)).IntPart()
	date := in.AsOf.Add(time.Duration(seconds) * time.Second)
	if date.Before(in.AsOf) {
		date = in.AsOf
	}
	est.SuggestedReorderDate = &date
	return est
}

func suggestedQuantity(q decimal.Decimal, policy *entity.ItemPolicy) *decimal.Decimal {
	if policy == nil {
		return nil
	}
	s := policy.ReorderQuantity
	if policy.ReorderStrategy == entity.ReorderReplenishToMax {
		s = decimal.Max(policy.MaxStock.Sub(q), decimal.Zero)
	}
	return &s
}
