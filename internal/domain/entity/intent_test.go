package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewEntry_SignoYTipoPorVariante(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		in    entity.Intent
		kind  entity.MovementKind
		delta string
	}{
		{entity.Receipt{Quantity: dec("4")}, entity.KindReceive, "4"},
		{entity.Sale{Quantity: dec("4")}, entity.KindSale, "-4"},
		{entity.Usage{Quantity: dec("4")}, entity.KindUsage, "-4"},
		{entity.Adjustment{Change: dec("-4"), Reason: "conteo"}, entity.KindAdjustment, "-4"},
		{entity.Return{Quantity: dec("4")}, entity.KindReturn, "4"},
		{entity.TransferOut{Quantity: dec("4"), GroupID: "g1"}, entity.KindTransferOut, "-4"},
		{entity.TransferIn{Quantity: dec("4"), GroupID: "g1"}, entity.KindTransferIn, "4"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			e, err := entity.NewEntry(tc.in, "01J", "item-1", "loc-1", "", at)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, e.Kind)
			assert.True(t, e.QuantityDelta.Equal(dec(tc.delta)), "delta %s", e.QuantityDelta)
			assert.Equal(t, entity.ActorSystem, e.Actor, "sin actor queda el sistema")
		})
	}
}

func TestValidate_Rechazos(t *testing.T) {
	assert.ErrorIs(t, entity.Validate(entity.Sale{Quantity: dec("-1")}), domain.ErrInvalidQuantitySign)
	assert.ErrorIs(t, entity.Validate(entity.Usage{Quantity: decimal.Zero}), domain.ErrZeroQuantity)
	assert.ErrorIs(t, entity.Validate(entity.Adjustment{Change: dec("2")}), domain.ErrMissingReason)
	assert.ErrorIs(t, entity.Validate(entity.TransferOut{Quantity: dec("1")}), domain.ErrInvalidInput)
	assert.ErrorIs(t, entity.Validate(nil), domain.ErrUnknownKind)
}
