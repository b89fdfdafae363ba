package memory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones optimistas sobre Store: las escrituras se acumulan y al confirmar
// se comprueba que ninguna proyección tocada cambió de versión desde que se leyó.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repos atados a una transacción nueva y confirma si fn no falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	projRepo repository.ProjectionRepository,
	batchRepo repository.BatchRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{store: r.store, projections: make(map[entity.StockKey]stagedProjection)}
	if err := fn(&txMovementRepo{t}, &txProjectionRepo{t}, &txBatchRepo{t}); err != nil {
		return err
	}
	return t.commit()
}

type stagedProjection struct {
	p        *entity.StockProjection
	expected int64
}

type tx struct {
	store       *Store
	movements   []*entity.MovementEntry
	projections map[entity.StockKey]stagedProjection
	batches     []*entity.Batch
}

func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sp := range t.projections {
		if currentVersion(s, key) != sp.expected {
			return domain.ErrConcurrencyConflict
		}
	}
	for _, e := range t.movements {
		if _, dup := s.byID[e.ID]; dup {
			return domain.ErrDuplicate
		}
	}
	for _, e := range t.movements {
		s.movements[e.Key()] = append(s.movements[e.Key()], e)
		s.byID[e.ID] = e
	}
	for key, sp := range t.projections {
		s.projections[key] = sp.p
	}
	for _, b := range t.batches {
		key := entity.StockKey{ItemID: b.ItemID, LocationID: b.LocationID}
		s.batches[key] = append(s.batches[key], b)
	}
	return nil
}

func currentVersion(s *Store, key entity.StockKey) int64 {
	if p, ok := s.projections[key]; ok {
		return p.Version
	}
	return 0
}

// stagedFor movimientos de la clave pendientes en esta transacción.
func (t *tx) stagedFor(key entity.StockKey) []*entity.MovementEntry {
	var out []*entity.MovementEntry
	for _, e := range t.movements {
		if e.Key() == key {
			out = append(out, e)
		}
	}
	return out
}
