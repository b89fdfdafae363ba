package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

var opts = inventory.ConditionOptions{ExpirationLookaheadDays: 7, PriceChangeThresholdPct: dec("20")}

func policy() *entity.ItemPolicy {
	return &entity.ItemPolicy{
		ItemID: key.ItemID, MinStock: dec("10"), ReorderPoint: dec("12"), ReorderQuantity: dec("20"),
	}
}

func projection(q string) *entity.StockProjection {
	p := entity.ZeroProjection(key)
	p.Quantity = dec(q)
	p.Version = 1
	return p
}

func kinds(cs []inventory.Condition) []entity.AlertKind {
	out := make([]entity.AlertKind, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Kind)
	}
	return out
}

// ── Bandas de cantidad ──

func TestConditions_Bandas(t *testing.T) {
	cases := []struct {
		qty      string
		want     []entity.AlertKind
		severity entity.Severity
	}{
		{"45", []entity.AlertKind{}, ""},
		{"12.01", []entity.AlertKind{}, ""},
		{"12", []entity.AlertKind{entity.AlertReorder}, entity.SeverityInfo},
		{"10.5", []entity.AlertKind{entity.AlertReorder}, entity.SeverityInfo},
		{"10", []entity.AlertKind{entity.AlertLowStock}, entity.SeverityWarning},
		{"5.01", []entity.AlertKind{entity.AlertLowStock}, entity.SeverityWarning},
		{"5", []entity.AlertKind{entity.AlertCriticalStock}, entity.SeverityCritical},
		{"0.1", []entity.AlertKind{entity.AlertCriticalStock}, entity.SeverityCritical},
		{"0", []entity.AlertKind{entity.AlertOutOfStock}, entity.SeverityCritical},
		{"-2", []entity.AlertKind{entity.AlertOutOfStock}, entity.SeverityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.qty, func(t *testing.T) {
			cs := inventory.Conditions(projection(tc.qty), policy(), nil, opts, t0)
			assert.Equal(t, tc.want, kinds(cs), "bandas excluyentes para cantidad %s", tc.qty)
			if len(cs) == 1 {
				assert.Equal(t, tc.severity, cs[0].Severity)
				assert.True(t, cs[0].Snapshot.Quantity.Equal(dec(tc.qty)))
			}
		})
	}
}

func TestCrossedBands(t *testing.T) {
	cases := []struct {
		from, to string
		want     []entity.AlertKind
	}{
		{"45", "30", []entity.AlertKind{}},
		{"15", "0", []entity.AlertKind{entity.AlertReorder, entity.AlertLowStock, entity.AlertCriticalStock}},
		{"11", "4", []entity.AlertKind{entity.AlertLowStock}},
		{"12", "10", []entity.AlertKind{}},
		{"9", "0", []entity.AlertKind{entity.AlertCriticalStock}},
		{"0", "15", []entity.AlertKind{}},
	}
	for _, tc := range cases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			assert.Equal(t, tc.want, kinds(inventory.CrossedBands(dec(tc.from), dec(tc.to), policy())))
		})
	}

	t.Run("sin política", func(t *testing.T) {
		assert.Empty(t, inventory.CrossedBands(dec("15"), dec("0"), nil))
	})
	t.Run("punto de reorden bajo el mínimo", func(t *testing.T) {
		p := policy()
		p.ReorderPoint = dec("8")
		assert.Equal(t, []entity.AlertKind{entity.AlertLowStock, entity.AlertCriticalStock},
			kinds(inventory.CrossedBands(dec("15"), dec("0"), p)), "la banda reorder queda vacía")
	})
	t.Run("la foto lleva el borde de la banda", func(t *testing.T) {
		cs := inventory.CrossedBands(dec("15"), dec("0"), policy())
		require.Len(t, cs, 3)
		assert.True(t, cs[0].Snapshot.Quantity.Equal(dec("12")))
		assert.True(t, cs[2].Snapshot.Threshold.Equal(dec("5")))
	})
}

func TestConditions_SinPolitica_SoloAgotado(t *testing.T) {
	assert.Empty(t, inventory.Conditions(projection("3"), nil, nil, opts, t0))

	cs := inventory.Conditions(projection("0"), nil, nil, opts, t0)
	require.Len(t, cs, 1)
	assert.Equal(t, entity.AlertOutOfStock, cs[0].Kind)

	assert.Empty(t, inventory.Conditions(entity.ZeroProjection(key), nil, nil, opts, t0),
		"una clave sin historial no está agotada")
}

// ── Vencimiento ──

func batch(id, lot string, qty string, received, expires time.Time) *entity.Batch {
	return &entity.Batch{
		MovementID: id, ItemID: key.ItemID, LocationID: key.LocationID,
		LotNumber: lot, Quantity: dec(qty), ReceivedAt: received, ExpiresAt: expires,
	}
}

func TestConditions_Vencimiento_Severidad(t *testing.T) {
	pol := policy()
	pol.ExpirationTrackingEnabled = true

	cases := []struct {
		name    string
		expires time.Time
		want    entity.Severity
		days    int
	}{
		{"vencido", t0.Add(-2 * time.Hour), entity.SeverityCritical, 0},
		{"tres_dias", t0.AddDate(0, 0, 3), entity.SeverityWarning, 3},
		{"seis_dias", t0.AddDate(0, 0, 6), entity.SeverityInfo, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batches := []*entity.Batch{batch("01", "L1", "20", t0.AddDate(0, 0, -10), tc.expires)}
			cs := inventory.Conditions(projection("20"), pol, batches, opts, t0)
			require.Len(t, cs, 1)
			c := cs[0]
			assert.Equal(t, entity.AlertExpiring, c.Kind)
			assert.Equal(t, tc.want, c.Severity)
			require.NotNil(t, c.Snapshot.DaysRemaining)
			assert.Equal(t, tc.days, *c.Snapshot.DaysRemaining)
			assert.Equal(t, "L1", c.Snapshot.LotNumber)
		})
	}
}

func TestConditions_Vencimiento_FueraDeVentanaOLoteConsumido(t *testing.T) {
	pol := policy()
	pol.ExpirationTrackingEnabled = true

	far := []*entity.Batch{batch("01", "L1", "20", t0, t0.AddDate(0, 0, 30))}
	assert.Empty(t, inventory.Conditions(projection("20"), pol, far, opts, t0), "fuera de la ventana")

	// El lote viejo (vence pronto) ya salió por FIFO: las 15 unidades actuales son del lote nuevo.
	batches := []*entity.Batch{
		batch("01", "VIEJO", "10", t0.AddDate(0, 0, -20), t0.AddDate(0, 0, 1)),
		batch("02", "NUEVO", "20", t0.AddDate(0, 0, -1), t0.AddDate(0, 0, 60)),
	}
	assert.Empty(t, inventory.Conditions(projection("15"), pol, batches, opts, t0))

	cs := inventory.Conditions(projection("25"), pol, batches, opts, t0)
	require.Len(t, cs, 1)
	assert.Equal(t, "VIEJO", cs[0].Snapshot.LotNumber)
	assert.True(t, cs[0].Snapshot.Quantity.Equal(dec("5")), "solo 5 unidades del lote viejo siguen en existencia")
}

func TestConditions_Vencimiento_Deshabilitado(t *testing.T) {
	batches := []*entity.Batch{batch("01", "L1", "20", t0, t0.AddDate(0, 0, 1))}
	assert.Empty(t, inventory.Conditions(projection("20"), policy(), batches, opts, t0))
}

// ── Cambio de precio ──

func TestConditions_CambioDePrecio(t *testing.T) {
	p := projection("40")
	p.PriorAverageCost = dec("10")
	p.LastUnitCost = dec("12.5")

	cs := inventory.Conditions(p, policy(), nil, opts, t0)
	require.Len(t, cs, 1, "25% supera el umbral de 20%")
	assert.Equal(t, entity.AlertPriceChange, cs[0].Kind)
	assert.Equal(t, entity.SeverityWarning, cs[0].Severity)
	require.NotNil(t, cs[0].Snapshot.UnitCost)
	assert.True(t, cs[0].Snapshot.UnitCost.Equal(dec("12.5")))

	p.LastUnitCost = dec("11.9")
	assert.Empty(t, inventory.Conditions(p, policy(), nil, opts, t0), "19% está dentro del umbral")

	pol := policy()
	pol.PriceChangeThresholdPct = dec("15")
	assert.Len(t, inventory.Conditions(p, pol, nil, opts, t0), 1, "la política puede bajar el umbral")

	p.PriorAverageCost = decimal.Zero
	assert.Empty(t, inventory.Conditions(p, pol, nil, opts, t0), "sin costo previo no hay comparación")
}

func TestOnHandBatches_FIFO(t *testing.T) {
	batches := []*entity.Batch{
		batch("01", "A", "10", t0, t0),
		batch("02", "B", "10", t0.Add(time.Hour), t0),
		batch("03", "C", "10", t0.Add(2*time.Hour), t0),
	}
	got := inventory.OnHandBatches(batches, dec("14"))
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].LotNumber)
	assert.True(t, got[0].OnHand.Equal(dec("10")))
	assert.Equal(t, "B", got[1].LotNumber)
	assert.True(t, got[1].OnHand.Equal(dec("4")))

	assert.Empty(t, inventory.OnHandBatches(batches, dec("0")))
}
