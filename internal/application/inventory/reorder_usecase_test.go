package inventory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	repos   *memory.Repositories
	ledger  *ledger.Service
	reorder *inventory.ReorderUseCase
	asOf    time.Time
}

// newFixture: los movimientos quedan en t0 + n segundos y las estimaciones se piden a t0 + 7 días.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()
	for _, it := range []*entity.Item{
		{ID: "harina", SKU: "HAR-1", Name: "Harina"},
		{ID: "azucar", SKU: "AZU-1", Name: "Azúcar"},
	} {
		require.NoError(t, repos.Items.Create(ctx, it))
	}
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "cocina", Name: "Cocina", Active: true}))
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{ID: "molino", Name: "Molino", LeadTimeDays: 5}))

	var n atomic.Int64
	clock := func() time.Time { return t0.Add(time.Duration(n.Add(1)) * time.Second) }
	svc := ledger.NewService(repos.Tx, repos.Items, repos.Locations, repos.Movements, repos.Projections,
		&events.Recorder{}, logger.Nop(), ledger.Config{MaxRetries: 3}, ledger.WithClock(clock))

	uc := inventory.NewReorderUseCase(repos.Items, repos.Locations, repos.Projections, repos.Movements,
		repos.Policies, repos.Suppliers, inventory.ReorderConfig{UsageWindowDays: 7, DefaultLeadTimeDays: 2})
	asOf := t0.AddDate(0, 0, 7)
	uc.SetClock(func() time.Time { return asOf })
	return &fixture{repos: repos, ledger: svc, reorder: uc, asOf: asOf}
}

func (f *fixture) policy(t *testing.T, p entity.ItemPolicy) {
	t.Helper()
	require.NoError(t, f.repos.Policies.Upsert(context.Background(), &p))
}

func (f *fixture) receive(t *testing.T, item, qty, cost string) {
	t.Helper()
	_, err := f.ledger.RecordReceipt(context.Background(), item, "cocina", dec(qty), "", "", ledger.WithUnitCost(dec(cost)))
	require.NoError(t, err)
}

func (f *fixture) sell(t *testing.T, item, qty string) {
	t.Helper()
	_, err := f.ledger.RecordSale(context.Background(), item, "cocina", dec(qty), "")
	require.NoError(t, err)
}

// ── Estimación de reorden ──

func TestGetReorderEstimate_TasaYFechaConProveedor(t *testing.T) {
	f := newFixture(t)
	f.policy(t, entity.ItemPolicy{
		ItemID: "harina", MinStock: dec("20"), ReorderPoint: dec("30"), ReorderQuantity: dec("50"),
		ReorderStrategy: entity.ReorderFixed, PreferredSupplierID: "molino",
	})
	f.receive(t, "harina", "100", "1000")
	f.sell(t, "harina", "10")
	f.sell(t, "harina", "4")

	est, err := f.reorder.GetReorderEstimate(context.Background(), "harina", "cocina")
	require.NoError(t, err)
	assert.False(t, est.InsufficientData)
	assert.Equal(t, 7, est.WindowDays)
	assert.True(t, dec("2").Equal(est.UsageRatePerDay), "14 unidades en 7 días: %s", est.UsageRatePerDay)
	require.NotNil(t, est.DaysUntilEmpty)
	assert.True(t, dec("43").Equal(*est.DaysUntilEmpty))
	assert.Equal(t, 5, est.LeadTimeDays, "toma el plazo del proveedor preferido")
	require.NotNil(t, est.SuggestedReorderDate)
	assert.Equal(t, f.asOf.AddDate(0, 0, 38), *est.SuggestedReorderDate)
	require.NotNil(t, est.SuggestedQuantity)
	assert.True(t, dec("50").Equal(*est.SuggestedQuantity))
}

func TestGetReorderEstimate_SinHistorial(t *testing.T) {
	f := newFixture(t)
	est, err := f.reorder.GetReorderEstimate(context.Background(), "harina", "cocina")
	require.NoError(t, err)
	assert.True(t, est.InsufficientData)
	assert.Nil(t, est.DaysUntilEmpty)
	assert.Nil(t, est.SuggestedQuantity, "sin política no hay cantidad sugerida")
	assert.Equal(t, 2, est.LeadTimeDays)
}

func TestGetReorderEstimate_ClavesDesconocidas(t *testing.T) {
	f := newFixture(t)
	_, err := f.reorder.GetReorderEstimate(context.Background(), "no-existe", "cocina")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.reorder.GetReorderEstimate(context.Background(), "harina", "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ── Lista de reposición ──

func TestReplenishmentList_OrdenaPorUrgencia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.policy(t, entity.ItemPolicy{ItemID: "harina", MinStock: dec("5"), ReorderPoint: dec("40"), ReorderQuantity: dec("50")})
	f.policy(t, entity.ItemPolicy{
		ItemID: "azucar", MinStock: dec("5"), MaxStock: dec("100"), ReorderPoint: dec("40"),
		ReorderStrategy: entity.ReorderReplenishToMax,
	})

	// harina: 30 en stock, 2/día -> 15 días
	f.receive(t, "harina", "44", "1000")
	f.sell(t, "harina", "14")
	// azucar: 21 en stock, 7/día -> 3 días
	f.receive(t, "azucar", "70", "2000")
	f.sell(t, "azucar", "49")

	list, err := f.reorder.ReplenishmentList(ctx, "cocina")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "azucar", list[0].ItemID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, "AZU-1", list[0].SKU)
	assert.True(t, dec("79").Equal(list[0].SuggestedOrderQty), "reponer hasta el máximo: 100 - 21")
	assert.True(t, dec("158000").Equal(list[0].EstimatedOrderCost))

	assert.Equal(t, "harina", list[1].ItemID)
	assert.Equal(t, 2, list[1].Priority)
	assert.True(t, dec("50").Equal(list[1].SuggestedOrderQty))
}

func TestReplenishmentList_OmiteSobrePuntoDeReorden(t *testing.T) {
	f := newFixture(t)
	f.policy(t, entity.ItemPolicy{ItemID: "harina", ReorderPoint: dec("10"), ReorderQuantity: dec("5")})
	f.receive(t, "harina", "50", "1000")
	// azucar sin política
	f.receive(t, "azucar", "1", "1000")

	list, err := f.reorder.ReplenishmentList(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ── Reorden automático ──

func TestAutoReorder_PublicaSugerencia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.policy(t, entity.ItemPolicy{ItemID: "harina", ReorderPoint: dec("30"), ReorderQuantity: dec("50"), AutoReorder: true})
	f.receive(t, "harina", "20", "1000")

	rec := &events.Recorder{}
	h := inventory.NewAutoReorder(f.reorder, rec, logger.Nop())
	key := entity.StockKey{ItemID: "harina", LocationID: "cocina"}
	alert := &entity.Alert{ID: "a-1", ItemID: "harina", LocationID: "cocina", Kind: entity.AlertReorder}

	require.NoError(t, h.Handle(ctx, events.Event{Type: events.AlertOpened, Key: key, Alert: alert}))
	got := rec.Events(events.ReorderSuggested)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Estimate.SuggestedQuantity)
	assert.True(t, dec("50").Equal(*got[0].Estimate.SuggestedQuantity))

	// alertas que no son de banda de stock no disparan
	expiring := &entity.Alert{ID: "a-2", ItemID: "harina", LocationID: "cocina", Kind: entity.AlertExpiring}
	require.NoError(t, h.Handle(ctx, events.Event{Type: events.AlertOpened, Key: key, Alert: expiring}))
	assert.Len(t, rec.Events(events.ReorderSuggested), 1)
}

func TestAutoReorder_DesactivadoNoPublica(t *testing.T) {
	f := newFixture(t)
	f.policy(t, entity.ItemPolicy{ItemID: "harina", ReorderPoint: dec("30"), ReorderQuantity: dec("50")})
	rec := &events.Recorder{}
	h := inventory.NewAutoReorder(f.reorder, rec, logger.Nop())

	alert := &entity.Alert{ID: "a-1", ItemID: "harina", LocationID: "cocina", Kind: entity.AlertLowStock}
	require.NoError(t, h.Handle(context.Background(), events.Event{
		Type: events.AlertOpened, Key: entity.StockKey{ItemID: "harina", LocationID: "cocina"}, Alert: alert,
	}))
	assert.Empty(t, rec.Events())
}
