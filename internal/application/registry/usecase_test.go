package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/registry"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

func newUseCase() (*registry.UseCase, *memory.Repositories) {
	r := memory.NewRepositories()
	return registry.NewUseCase(r.Items, r.Locations, r.Categories, r.Suppliers, r.Policies), r
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Ubicaciones ──

func TestCreateLocation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	loc, err := uc.CreateLocation(ctx, dto.CreateLocationRequest{ID: "bodega-1", Name: "Bodega principal"})
	require.NoError(t, err)
	assert.Equal(t, "bodega-1", loc.ID)
	assert.True(t, loc.Active)

	auto, err := uc.CreateLocation(ctx, dto.CreateLocationRequest{Name: "Cocina"})
	require.NoError(t, err)
	assert.NotEmpty(t, auto.ID, "sin ID se genera uno")

	_, err = uc.CreateLocation(ctx, dto.CreateLocationRequest{Name: "  "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	off, err := uc.DeactivateLocation(ctx, "bodega-1")
	require.NoError(t, err)
	assert.False(t, off.Active)

	list, err := uc.ListLocations(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ── Categorías ──

func TestCreateCategory_CodigoUnicoYPadre(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	parent, err := uc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "Abarrotes", Code: "ABA"})
	require.NoError(t, err)

	_, err = uc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "Otra", Code: "ABA"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "código repetido")

	_, err = uc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "Harinas", Code: "HAR", ParentID: "no-existe"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	child, err := uc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "Harinas", Code: "HAR", ParentID: parent.ID})
	require.NoError(t, err)

	children, err := uc.ListCategories(ctx, parent.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)
}

// ── Ítems ──

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()

	item, err := uc.CreateItem(ctx, dto.CreateItemRequest{ID: "harina", SKU: "HAR-1", Name: "Harina"})
	require.NoError(t, err)
	assert.Equal(t, "und", item.UnitMeasure, "unidad por defecto")

	_, err = uc.CreateItem(ctx, dto.CreateItemRequest{SKU: "HAR-1", Name: "Repetido"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = uc.CreateItem(ctx, dto.CreateItemRequest{SKU: "X", Name: "X", CategoryID: "no-existe"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := uc.GetItem(ctx, "harina")
	require.NoError(t, err)
	assert.Equal(t, "HAR-1", got.SKU)
}

// ── Políticas ──

func TestSetPolicy_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, repos := newUseCase()
	_, err := uc.CreateItem(ctx, dto.CreateItemRequest{ID: "harina", SKU: "HAR-1", Name: "Harina"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.PolicyRequest
	}{
		{"mínimo negativo", dto.PolicyRequest{MinStock: dec("-1")}},
		{"punto de reorden bajo el mínimo", dto.PolicyRequest{MinStock: dec("10"), ReorderPoint: dec("5")}},
		{"máximo bajo el punto de reorden", dto.PolicyRequest{ReorderPoint: dec("50"), MaxStock: dec("40")}},
		{"estrategia desconocida", dto.PolicyRequest{ReorderStrategy: "lo-que-sea"}},
		{"reponer al máximo sin máximo", dto.PolicyRequest{ReorderStrategy: string(entity.ReorderReplenishToMax)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.SetPolicy(ctx, "harina", tc.in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error obtenido: %v", err)
		})
	}

	_, err = uc.SetPolicy(ctx, "no-existe", dto.PolicyRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	p, err := uc.SetPolicy(ctx, "harina", dto.PolicyRequest{
		MinStock: dec("10"), ReorderPoint: dec("12"), ReorderQuantity: dec("20"), MaxStock: dec("60"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReorderFixed, p.ReorderStrategy)

	resolved, err := repos.Policies.Resolve(ctx, entity.StockKey{ItemID: "harina", LocationID: "cualquiera"})
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.True(t, dec("12").Equal(resolved.ReorderPoint))
}

func TestCreateSupplier(t *testing.T) {
	uc, _ := newUseCase()
	s, err := uc.CreateSupplier(context.Background(), dto.CreateSupplierRequest{Name: "Molino", LeadTimeDays: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	_, err = uc.CreateSupplier(context.Background(), dto.CreateSupplierRequest{Name: "Molino", LeadTimeDays: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
