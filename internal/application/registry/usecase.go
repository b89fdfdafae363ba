package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// UseCase registro de ubicaciones, categorías, ítems, proveedores y políticas.
type UseCase struct {
	items      repository.ItemRepository
	locations  repository.LocationRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	policies   repository.PolicyRepository
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	policyRepo repository.PolicyRepository,
) *UseCase {
	return &UseCase{
		items:      itemRepo,
		locations:  locationRepo,
		categories: categoryRepo,
		suppliers:  supplierRepo,
		policies:   policyRepo,
		now:        time.Now,
	}
}

// CreateLocation crea una ubicación activa.
func (uc *UseCase) CreateLocation(ctx context.Context, in dto.CreateLocationRequest) (*entity.Location, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	loc := &entity.Location{
		ID:        idOrNew(in.ID),
		Name:      in.Name,
		Address:   in.Address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// DeactivateLocation desactiva una ubicación; los movimientos nuevos la rechazan.
func (uc *UseCase) DeactivateLocation(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loc.Active = false
	loc.UpdatedAt = uc.now()
	if err := uc.locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// ListLocations lista ubicaciones con paginación.
func (uc *UseCase) ListLocations(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	return uc.locations.List(ctx, limit, offset)
}

// CreateCategory crea una categoría; el código es único y el padre, si se indica, debe existir.
func (uc *UseCase) CreateCategory(ctx context.Context, in dto.CreateCategoryRequest) (*entity.Category, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Code) == "" {
		return nil, domain.ErrInvalidInput
	}
	if existing, err := uc.categories.GetByCode(ctx, in.Code); err == nil && existing != nil {
		return nil, domain.ErrDuplicate
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if in.ParentID != "" {
		if _, err := uc.categories.GetByID(ctx, in.ParentID); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	c := &entity.Category{
		ID:        uuid.New().String(),
		ParentID:  in.ParentID,
		Name:      in.Name,
		Code:      in.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories lista categorías; con parentID solo las hijas directas.
func (uc *UseCase) ListCategories(ctx context.Context, parentID string, limit, offset int) ([]*entity.Category, error) {
	if parentID != "" {
		return uc.categories.ListByParent(ctx, parentID)
	}
	return uc.categories.List(ctx, limit, offset)
}

// CreateItem crea un ítem del catálogo.
func (uc *UseCase) CreateItem(ctx context.Context, in dto.CreateItemRequest) (*entity.Item, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != "" {
		if _, err := uc.categories.GetByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	unit := in.UnitMeasure
	if unit == "" {
		unit = "und"
	}
	now := uc.now()
	item := &entity.Item{
		ID:          idOrNew(in.ID),
		SKU:         in.SKU,
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		UnitMeasure: unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem obtiene un ítem por ID.
func (uc *UseCase) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return uc.items.GetByID(ctx, id)
}

// ListItems lista ítems con paginación.
func (uc *UseCase) ListItems(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	return uc.items.List(ctx, limit, offset)
}

// CreateSupplier crea un proveedor.
func (uc *UseCase) CreateSupplier(ctx context.Context, in dto.CreateSupplierRequest) (*entity.Supplier, error) {
	if strings.TrimSpace(in.Name) == "" || in.LeadTimeDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	s := &entity.Supplier{ID: uuid.New().String(), Name: in.Name, LeadTimeDays: in.LeadTimeDays, CreatedAt: uc.now()}
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetPolicy crea o reemplaza la política del ítem (general o por ubicación).
// Exige 0 <= MinStock <= ReorderPoint y, si hay MaxStock, ReorderPoint <= MaxStock.
func (uc *UseCase) SetPolicy(ctx context.Context, itemID string, in dto.PolicyRequest) (*entity.ItemPolicy, error) {
	if _, err := uc.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	if in.LocationID != "" {
		if _, err := uc.locations.GetByID(ctx, in.LocationID); err != nil {
			return nil, err
		}
	}
	if in.PreferredSupplierID != "" {
		if _, err := uc.suppliers.GetByID(ctx, in.PreferredSupplierID); err != nil {
			return nil, err
		}
	}
	strategy := entity.ReorderStrategy(in.ReorderStrategy)
	if strategy == "" {
		strategy = entity.ReorderFixed
	}
	if err := validatePolicy(in, strategy); err != nil {
		return nil, err
	}
	p := &entity.ItemPolicy{
		ItemID:                    itemID,
		LocationID:                in.LocationID,
		MinStock:                  in.MinStock,
		MaxStock:                  in.MaxStock,
		ReorderPoint:              in.ReorderPoint,
		ReorderQuantity:           in.ReorderQuantity,
		ReorderStrategy:           strategy,
		ExpirationTrackingEnabled: in.ExpirationTrackingEnabled,
		ExpirationLookaheadDays:   in.ExpirationLookaheadDays,
		PriceChangeThresholdPct:   in.PriceChangeThresholdPct,
		AutoReorder:               in.AutoReorder,
		PreferredSupplierID:       in.PreferredSupplierID,
		UpdatedAt:                 uc.now(),
	}
	if err := uc.policies.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePolicy(in dto.PolicyRequest, strategy entity.ReorderStrategy) error {
	switch {
	case in.MinStock.IsNegative(), in.ReorderQuantity.IsNegative(), in.PriceChangeThresholdPct.IsNegative():
		return domain.ErrInvalidInput
	case in.ReorderPoint.LessThan(in.MinStock):
		return domain.ErrInvalidInput
	case in.MaxStock.IsPositive() && in.MaxStock.LessThan(in.ReorderPoint):
		return domain.ErrInvalidInput
	case in.ExpirationLookaheadDays < 0:
		return domain.ErrInvalidInput
	}
	switch strategy {
	case entity.ReorderFixed:
	case entity.ReorderReplenishToMax:
		if !in.MaxStock.IsPositive() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func idOrNew(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.New().String()
}
