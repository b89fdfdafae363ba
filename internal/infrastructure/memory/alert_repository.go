package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas en memoria.
type AlertRepo struct {
	s *Store
}

// NewAlertRepository construye el repositorio.
func NewAlertRepository(s *Store) *AlertRepo {
	return &AlertRepo{s: s}
}

// Create falla con ErrDuplicate si ya hay una alerta activa con la misma clave.
func (r *AlertRepo) Create(_ context.Context, a *entity.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[a.ID]; ok {
		return domain.ErrDuplicate
	}
	if a.State.Active() {
		for _, x := range r.s.alerts {
			if x.State.Active() && x.DedupeKey() == a.DedupeKey() {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (r *AlertRepo) Update(_ context.Context, a *entity.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAlert(a), nil
}

func (r *AlertRepo) ListActiveByKey(_ context.Context, key entity.StockKey) ([]*entity.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Alert, 0)
	for _, id := range sortedKeys(r.s.alerts) {
		a := r.s.alerts[id]
		if a.State.Active() && a.ItemID == key.ItemID && a.LocationID == key.LocationID {
			out = append(out, cloneAlert(a))
		}
	}
	return out, nil
}

// List más recientes primero. Sin States filtra por estados activos.
func (r *AlertRepo) List(_ context.Context, f entity.AlertFilter) ([]*entity.Alert, error) {
	r.s.mu.RLock()
	out := make([]*entity.Alert, 0)
	for _, a := range r.s.alerts {
		if matchAlert(a, f) {
			out = append(out, cloneAlert(a))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.After(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func matchAlert(a *entity.Alert, f entity.AlertFilter) bool {
	if f.ItemID != "" && a.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && a.LocationID != f.LocationID {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, a.Kind) {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if len(f.States) > 0 {
		return slices.Contains(f.States, a.State)
	}
	return a.State.Active()
}
