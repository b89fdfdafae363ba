package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProjectionRepository = (*ProjectionRepo)(nil)
var _ repository.ProjectionRepository = (*txProjectionRepo)(nil)

// ProjectionRepo proyecciones confirmadas. Save fuera de transacción también es condicional.
type ProjectionRepo struct {
	s *Store
}

// NewProjectionRepository construye el repositorio.
func NewProjectionRepository(s *Store) *ProjectionRepo {
	return &ProjectionRepo{s: s}
}

func (r *ProjectionRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.projections[key]; ok {
		return cloneProjection(p), nil
	}
	return entity.ZeroProjection(key), nil
}

// GetForUpdate sin bloqueo: la exclusión la da la comprobación de versión en Save.
func (r *ProjectionRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	return r.Get(ctx, key)
}

func (r *ProjectionRepo) Save(_ context.Context, p *entity.StockProjection, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if currentVersion(r.s, p.Key()) != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	r.s.projections[p.Key()] = cloneProjection(p)
	return nil
}

func (r *ProjectionRepo) List(_ context.Context, f entity.ProjectionFilter) ([]*entity.StockProjection, error) {
	r.s.mu.RLock()
	out := make([]*entity.StockProjection, 0, len(r.s.projections))
	for key, p := range r.s.projections {
		if f.ItemID != "" && key.ItemID != f.ItemID {
			continue
		}
		if f.LocationID != "" && key.LocationID != f.LocationID {
			continue
		}
		out = append(out, cloneProjection(p))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return page(out, f.Limit, f.Offset), nil
}

type txProjectionRepo struct {
	t *tx
}

func (r *txProjectionRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	if sp, ok := r.t.projections[key]; ok {
		return cloneProjection(sp.p), nil
	}
	return NewProjectionRepository(r.t.store).Get(ctx, key)
}

func (r *txProjectionRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockProjection, error) {
	return r.Get(ctx, key)
}

// Save acumula la escritura; la versión esperada que cuenta al confirmar es la primera leída.
func (r *txProjectionRepo) Save(_ context.Context, p *entity.StockProjection, expectedVersion int64) error {
	key := p.Key()
	if sp, ok := r.t.projections[key]; ok {
		if sp.p.Version != expectedVersion {
			return domain.ErrConcurrencyConflict
		}
		expectedVersion = sp.expected
	}
	r.t.projections[key] = stagedProjection{p: cloneProjection(p), expected: expectedVersion}
	return nil
}

func (r *txProjectionRepo) List(ctx context.Context, f entity.ProjectionFilter) ([]*entity.StockProjection, error) {
	return NewProjectionRepository(r.t.store).List(ctx, f)
}
