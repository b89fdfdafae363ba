package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// failingDestTx falla al guardar la proyección de una ubicación.
type failingDestTx struct {
	inner      ledger.TxRunner
	locationID string
}

func (f *failingDestTx) Run(ctx context.Context, fn func(repository.MovementRepository, repository.ProjectionRepository, repository.BatchRepository) error) error {
	return f.inner.Run(ctx, func(m repository.MovementRepository, p repository.ProjectionRepository, b repository.BatchRepository) error {
		return fn(m, &failingProjections{ProjectionRepository: p, locationID: f.locationID}, b)
	})
}

type failingProjections struct {
	repository.ProjectionRepository
	locationID string
}

var errDestino = errors.New("destino no disponible")

func (f *failingProjections) Save(ctx context.Context, p *entity.StockProjection, expected int64) error {
	if p.LocationID == f.locationID {
		return errDestino
	}
	return f.ProjectionRepository.Save(ctx, p, expected)
}

func quantity(t *testing.T, f *fixture, loc string) string {
	t.Helper()
	p, err := f.svc.GetProjection(context.Background(), "item-1", loc)
	require.NoError(t, err)
	return p.Quantity.String()
}

// ── Modo atómico ──

func TestTransfer_Atomico(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultConfig())
	_, err := f.svc.RecordReceipt(ctx, "item-1", "loc-1", dec("10"), "", "")
	require.NoError(t, err)

	groupID, err := f.svc.TransferStock(ctx, "item-1", "loc-1", "loc-2", dec("4"), "bodeguero")
	require.NoError(t, err)
	require.NotEmpty(t, groupID)

	assert.Equal(t, "6", quantity(t, f, "loc-1"))
	assert.Equal(t, "4", quantity(t, f, "loc-2"))

	legs, err := f.repos.Movements.ListByTransferGroup(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	kinds := []entity.MovementKind{legs[0].Kind, legs[1].Kind}
	assert.ElementsMatch(t, []entity.MovementKind{entity.KindTransferOut, entity.KindTransferIn}, kinds)
	assert.True(t, legs[0].QuantityDelta.Add(legs[1].QuantityDelta).IsZero(), "las patas suman cero")
}

func TestTransfer_StockInsuficienteNoEscribeNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultConfig())
	_, err := f.svc.RecordReceipt(ctx, "item-1", "loc-1", dec("3"), "", "")
	require.NoError(t, err)

	_, err = f.svc.TransferStock(ctx, "item-1", "loc-1", "loc-2", dec("5"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, "3", quantity(t, f, "loc-1"))
	assert.Equal(t, "0", quantity(t, f, "loc-2"))
	page, _, err := f.svc.HistoryPage(ctx, "item-1", "loc-2", entity.HistoryQuery{})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTransfer_MismaUbicacion(t *testing.T) {
	f := newFixture(t, defaultConfig())
	_, err := f.svc.TransferStock(context.Background(), "item-1", "loc-1", "loc-1", dec("1"), "")
	assert.True(t, errors.Is(err, domain.ErrSameLocation))
}

func TestTransfer_AtomicoFallaDestinoRevierteTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithTx(t, defaultConfig(), func(inner ledger.TxRunner) ledger.TxRunner {
		return &failingDestTx{inner: inner, locationID: "loc-2"}
	})
	_, err := f.svc.RecordReceipt(ctx, "item-1", "loc-1", dec("10"), "", "")
	require.NoError(t, err)

	_, err = f.svc.TransferStock(ctx, "item-1", "loc-1", "loc-2", dec("4"), "")
	require.ErrorIs(t, err, errDestino)
	assert.Equal(t, "10", quantity(t, f, "loc-1"))
}

// ── Modo saga ──

func TestTransfer_SagaCompensaSiFallaDestino(t *testing.T) {
	ctx := context.Background()
	cfg := defaultConfig()
	cfg.TransferMode = ledger.TransferSaga
	f := newFixtureWithTx(t, cfg, func(inner ledger.TxRunner) ledger.TxRunner {
		return &failingDestTx{inner: inner, locationID: "loc-2"}
	})
	_, err := f.svc.RecordReceipt(ctx, "item-1", "loc-1", dec("10"), "", "")
	require.NoError(t, err)

	groupID, err := f.svc.TransferStock(ctx, "item-1", "loc-1", "loc-2", dec("4"), "bodeguero")
	require.Error(t, err)
	var tfe *domain.TransferFailedError
	require.True(t, errors.As(err, &tfe))
	assert.Equal(t, groupID, tfe.TransferGroupID)
	assert.NotEmpty(t, tfe.CompensatingEntryID)
	assert.ErrorIs(t, err, errDestino)

	assert.Equal(t, "10", quantity(t, f, "loc-1"), "la compensación restituye el origen")
	comp, err := f.repos.Movements.GetByID(ctx, tfe.CompensatingEntryID)
	require.NoError(t, err)
	assert.Equal(t, entity.KindAdjustment, comp.Kind)
	assert.Equal(t, groupID, comp.ReferenceID)
	assert.Equal(t, entity.ActorSystem, comp.Actor)

	// salida + recepción + compensación
	assert.Len(t, f.recorder.Events(events.AppliedMovement), 3)
	_, err = f.svc.Audit(ctx, "item-1", "loc-1")
	assert.NoError(t, err)
}

func TestTransfer_SagaExitoso(t *testing.T) {
	ctx := context.Background()
	cfg := defaultConfig()
	cfg.TransferMode = ledger.TransferSaga
	f := newFixture(t, cfg)
	_, err := f.svc.RecordReceipt(ctx, "item-1", "loc-1", dec("10"), "", "")
	require.NoError(t, err)

	_, err = f.svc.TransferStock(ctx, "item-1", "loc-1", "loc-2", dec("10"), "")
	require.NoError(t, err)
	assert.Equal(t, "0", quantity(t, f, "loc-1"))
	assert.Equal(t, "10", quantity(t, f, "loc-2"))
}
