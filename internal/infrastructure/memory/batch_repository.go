package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)
var _ repository.BatchRepository = (*txBatchRepo)(nil)

// BatchRepo lotes confirmados.
type BatchRepo struct {
	s *Store
}

// NewBatchRepository construye el repositorio.
func NewBatchRepository(s *Store) *BatchRepo {
	return &BatchRepo{s: s}
}

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *b
	key := entity.StockKey{ItemID: b.ItemID, LocationID: b.LocationID}
	r.s.batches[key] = append(r.s.batches[key], &c)
	return nil
}

func (r *BatchRepo) ListByKey(_ context.Context, key entity.StockKey) ([]*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Batch, 0, len(r.s.batches[key]))
	for _, b := range r.s.batches[key] {
		c := *b
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovementID < out[j].MovementID })
	return out, nil
}

type txBatchRepo struct {
	t *tx
}

func (r *txBatchRepo) Create(_ context.Context, b *entity.Batch) error {
	c := *b
	r.t.batches = append(r.t.batches, &c)
	return nil
}

func (r *txBatchRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.Batch, error) {
	out, _ := NewBatchRepository(r.t.store).ListByKey(ctx, key)
	for _, b := range r.t.batches {
		if b.ItemID == key.ItemID && b.LocationID == key.LocationID {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}
