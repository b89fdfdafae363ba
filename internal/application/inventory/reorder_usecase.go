package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// ReorderConfig parámetros del cálculo de reorden.
type ReorderConfig struct {
	UsageWindowDays     int
	DefaultLeadTimeDays int
}

// ReorderUseCase sugerencias de reorden (solo lectura).
type ReorderUseCase struct {
	items       repository.ItemRepository
	locations   repository.LocationRepository
	projections repository.ProjectionRepository
	movements   repository.MovementRepository
	policies    repository.PolicyRepository
	suppliers   repository.SupplierRepository
	cfg         ReorderConfig
	now         func() time.Time
}

// NewReorderUseCase construye el caso de uso.
func NewReorderUseCase(
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	projRepo repository.ProjectionRepository,
	movRepo repository.MovementRepository,
	policyRepo repository.PolicyRepository,
	supplierRepo repository.SupplierRepository,
	cfg ReorderConfig,
) *ReorderUseCase {
	if cfg.UsageWindowDays <= 0 {
		cfg.UsageWindowDays = inventory.DefaultUsageWindowDays
	}
	return &ReorderUseCase{
		items:       itemRepo,
		locations:   locationRepo,
		projections: projRepo,
		movements:   movRepo,
		policies:    policyRepo,
		suppliers:   supplierRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *ReorderUseCase) SetClock(now func() time.Time) { uc.now = now }

// GetReorderEstimate estimación a la fecha actual.
func (uc *ReorderUseCase) GetReorderEstimate(ctx context.Context, itemID, locationID string) (*inventory.Estimate, error) {
	if _, err := uc.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	if _, err := uc.locations.GetByID(ctx, locationID); err != nil {
		return nil, err
	}
	return uc.Estimate(ctx, entity.StockKey{ItemID: itemID, LocationID: locationID}, uc.now())
}

// Estimate estimación de la clave a asOf.
func (uc *ReorderUseCase) Estimate(ctx context.Context, key entity.StockKey, asOf time.Time) (*inventory.Estimate, error) {
	p, err := uc.projections.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	policy, err := uc.policies.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	return uc.estimate(ctx, p, policy, asOf)
}

func (uc *ReorderUseCase) estimate(ctx context.Context, p *entity.StockProjection, policy *entity.ItemPolicy, asOf time.Time) (*inventory.Estimate, error) {
	key := p.Key()
	first, err := uc.movements.FirstMovementAt(ctx, key)
	if err != nil {
		return nil, err
	}
	var movements []*entity.MovementEntry
	if first != nil {
		movements, err = uc.movements.ListSince(ctx, key, inventory.WindowStart(asOf, uc.cfg.UsageWindowDays))
		if err != nil {
			return nil, err
		}
	}
	lead, err := uc.leadTime(ctx, policy)
	if err != nil {
		return nil, err
	}
	est := inventory.EstimateReorder(inventory.EstimateInput{
		Projection:      p,
		Policy:          policy,
		Movements:       movements,
		FirstMovementAt: first,
		WindowDays:      uc.cfg.UsageWindowDays,
		LeadTimeDays:    lead,
		AsOf:            asOf,
	})
	return &est, nil
}

// leadTime días de entrega del proveedor preferido, o el valor por defecto.
func (uc *ReorderUseCase) leadTime(ctx context.Context, policy *entity.ItemPolicy) (int, error) {
	if policy == nil || policy.PreferredSupplierID == "" {
		return uc.cfg.DefaultLeadTimeDays, nil
	}
	s, err := uc.suppliers.GetByID(ctx, policy.PreferredSupplierID)
	if errors.Is(err, domain.ErrNotFound) {
		return uc.cfg.DefaultLeadTimeDays, nil
	}
	if err != nil {
		return 0, err
	}
	return s.LeadTimeDays, nil
}
