package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)
var _ repository.MovementRepository = (*txMovementRepo)(nil)

// MovementRepo lecturas del historial fuera de transacción. Append confirma de inmediato.
type MovementRepo struct {
	s *Store
}

// NewMovementRepository construye el repositorio.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) Append(_ context.Context, e *entity.MovementEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.byID[e.ID]; dup {
		return fmt.Errorf("append movement %s: %w", e.ID, domain.ErrDuplicate)
	}
	c := cloneEntry(e)
	r.s.movements[e.Key()] = append(r.s.movements[e.Key()], c)
	r.s.byID[e.ID] = c
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.MovementEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneEntry(e), nil
}

func (r *MovementRepo) List(_ context.Context, key entity.StockKey, q entity.HistoryQuery) ([]*entity.MovementEntry, error) {
	return listHistory(r.s.snapshot(key, nil), q), nil
}

func (r *MovementRepo) ListForReplay(_ context.Context, key entity.StockKey) ([]*entity.MovementEntry, error) {
	return r.s.snapshot(key, nil), nil
}

func (r *MovementRepo) ListSince(_ context.Context, key entity.StockKey, since time.Time) ([]*entity.MovementEntry, error) {
	return filterSince(r.s.snapshot(key, nil), since), nil
}

func (r *MovementRepo) FirstMovementAt(_ context.Context, key entity.StockKey) (*time.Time, error) {
	return firstTimestamp(r.s.snapshot(key, nil)), nil
}

func (r *MovementRepo) ListByTransferGroup(_ context.Context, groupID string) ([]*entity.MovementEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.MovementEntry
	for _, e := range r.s.byID {
		if e.TransferGroupID == groupID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MovementRepo) ExistsByReference(_ context.Context, key entity.StockKey, kind entity.MovementKind, referenceID string) (bool, error) {
	return hasReference(r.s.snapshot(key, nil), kind, referenceID), nil
}

// txMovementRepo ve lo confirmado más lo acumulado en la transacción.
type txMovementRepo struct {
	t *tx
}

func (r *txMovementRepo) Append(_ context.Context, e *entity.MovementEntry) error {
	r.t.movements = append(r.t.movements, cloneEntry(e))
	return nil
}

func (r *txMovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementEntry, error) {
	for _, e := range r.t.movements {
		if e.ID == id {
			return cloneEntry(e), nil
		}
	}
	return NewMovementRepository(r.t.store).GetByID(ctx, id)
}

func (r *txMovementRepo) List(_ context.Context, key entity.StockKey, q entity.HistoryQuery) ([]*entity.MovementEntry, error) {
	return listHistory(r.t.store.snapshot(key, r.t.stagedFor(key)), q), nil
}

func (r *txMovementRepo) ListForReplay(_ context.Context, key entity.StockKey) ([]*entity.MovementEntry, error) {
	return r.t.store.snapshot(key, r.t.stagedFor(key)), nil
}

func (r *txMovementRepo) ListSince(_ context.Context, key entity.StockKey, since time.Time) ([]*entity.MovementEntry, error) {
	return filterSince(r.t.store.snapshot(key, r.t.stagedFor(key)), since), nil
}

func (r *txMovementRepo) FirstMovementAt(_ context.Context, key entity.StockKey) (*time.Time, error) {
	return firstTimestamp(r.t.store.snapshot(key, r.t.stagedFor(key))), nil
}

func (r *txMovementRepo) ListByTransferGroup(ctx context.Context, groupID string) ([]*entity.MovementEntry, error) {
	out, _ := NewMovementRepository(r.t.store).ListByTransferGroup(ctx, groupID)
	for _, e := range r.t.movements {
		if e.TransferGroupID == groupID {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *txMovementRepo) ExistsByReference(_ context.Context, key entity.StockKey, kind entity.MovementKind, referenceID string) (bool, error) {
	return hasReference(r.t.store.snapshot(key, r.t.stagedFor(key)), kind, referenceID), nil
}

// snapshot copia del historial confirmado de la clave más extra, en orden de anexado.
func (s *Store) snapshot(key entity.StockKey, extra []*entity.MovementEntry) []*entity.MovementEntry {
	s.mu.RLock()
	committed := s.movements[key]
	out := make([]*entity.MovementEntry, 0, len(committed)+len(extra))
	for _, e := range committed {
		out = append(out, cloneEntry(e))
	}
	s.mu.RUnlock()
	for _, e := range extra {
		out = append(out, cloneEntry(e))
	}
	return out
}

func listHistory(all []*entity.MovementEntry, q entity.HistoryQuery) []*entity.MovementEntry {
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	out := make([]*entity.MovementEntry, 0)
	for _, e := range all {
		if q.Before != "" && e.ID >= q.Before {
			continue
		}
		if q.Range.From != nil && e.Timestamp.Before(*q.Range.From) {
			continue
		}
		if q.Range.To != nil && e.Timestamp.After(*q.Range.To) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func filterSince(all []*entity.MovementEntry, since time.Time) []*entity.MovementEntry {
	out := make([]*entity.MovementEntry, 0)
	for _, e := range all {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out
}

func firstTimestamp(all []*entity.MovementEntry) *time.Time {
	var earliest *time.Time
	for _, e := range all {
		if earliest == nil || e.Timestamp.Before(*earliest) {
			t := e.Timestamp
			earliest = &t
		}
	}
	return earliest
}

func hasReference(all []*entity.MovementEntry, kind entity.MovementKind, ref string) bool {
	for _, e := range all {
		if e.Kind == kind && e.ReferenceID == ref {
			return true
		}
	}
	return false
}
