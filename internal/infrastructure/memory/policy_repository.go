package memory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

// PolicyRepo políticas por ítem (y opcionalmente por ubicación).
type PolicyRepo struct {
	s *Store
}

// NewPolicyRepository construye el repositorio.
func NewPolicyRepository(s *Store) *PolicyRepo {
	return &PolicyRepo{s: s}
}

func (r *PolicyRepo) Upsert(_ context.Context, p *entity.ItemPolicy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.policies[entity.StockKey{ItemID: p.ItemID, LocationID: p.LocationID}] = &c
	return nil
}

func (r *PolicyRepo) Resolve(_ context.Context, key entity.StockKey) (*entity.ItemPolicy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.policies[key]; ok {
		c := *p
		return &c, nil
	}
	if p, ok := r.s.policies[entity.StockKey{ItemID: key.ItemID}]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}
