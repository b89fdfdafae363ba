package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// ItemRepo catálogo de ítems.
type ItemRepo struct{ s *Store }

// NewItemRepository construye el repositorio.
func NewItemRepository(s *Store) *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrDuplicate)
	}
	for _, x := range r.s.items {
		if item.SKU != "" && x.SKU == item.SKU {
			return fmt.Errorf("sku %s: %w", item.SKU, domain.ErrDuplicate)
		}
	}
	c := *item
	r.s.items[item.ID] = &c
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *it
	return &c, nil
}

func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Item, 0, len(r.s.items))
	for _, id := range sortedKeys(r.s.items) {
		c := *r.s.items[id]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

// LocationRepo ubicaciones.
type LocationRepo struct{ s *Store }

// NewLocationRepository construye el repositorio.
func NewLocationRepository(s *Store) *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) Create(_ context.Context, loc *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[loc.ID]; ok {
		return fmt.Errorf("location %s: %w", loc.ID, domain.ErrDuplicate)
	}
	c := *loc
	r.s.locations[loc.ID] = &c
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	loc, ok := r.s.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *loc
	return &c, nil
}

func (r *LocationRepo) Update(_ context.Context, loc *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[loc.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *loc
	r.s.locations[loc.ID] = &c
	return nil
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, id := range sortedKeys(r.s.locations) {
		c := *r.s.locations[id]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

// CategoryRepo categorías.
type CategoryRepo struct{ s *Store }

// NewCategoryRepository construye el repositorio.
func NewCategoryRepository(s *Store) *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) Create(_ context.Context, cat *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.categories {
		if x.ID == cat.ID || x.Code == cat.Code {
			return fmt.Errorf("category %s: %w", cat.Code, domain.ErrDuplicate)
		}
	}
	c := *cat
	r.s.categories[cat.ID] = &c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cat, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *cat
	return &c, nil
}

func (r *CategoryRepo) GetByCode(_ context.Context, code string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, cat := range r.s.categories {
		if cat.Code == code {
			c := *cat
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, id := range sortedKeys(r.s.categories) {
		c := *r.s.categories[id]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

func (r *CategoryRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error) {
	all, _ := r.List(ctx, 0, 0)
	out := make([]*entity.Category, 0)
	for _, c := range all {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

// SupplierRepo proveedores.
type SupplierRepo struct{ s *Store }

// NewSupplierRepository construye el repositorio.
func NewSupplierRepository(s *Store) *SupplierRepo { return &SupplierRepo{s: s} }

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sup.ID]; ok {
		return fmt.Errorf("supplier %s: %w", sup.ID, domain.ErrDuplicate)
	}
	c := *sup
	r.s.suppliers[sup.ID] = &c
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *sup
	return &c, nil
}
