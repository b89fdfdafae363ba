package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Modos de traslado.
const (
	TransferAtomic = "atomic" // ambas patas en una transacción
	TransferSaga   = "saga"   // cada pata confirma por separado, con compensación
)

// Config parámetros del registro de movimientos.
type Config struct {
	MaxRetries   int
	RetryBackoff time.Duration
	TransferMode string
}

// Service fachada del registro de movimientos y las proyecciones de stock.
type Service struct {
	tx          TxRunner
	items       repository.ItemRepository
	locations   repository.LocationRepository
	movements   repository.MovementRepository
	projections repository.ProjectionRepository
	publisher   events.Publisher
	log         *logger.Logger
	cfg         Config
	ids         *idGenerator
	now         func() time.Time
}

// Option opción de construcción.
type Option func(*Service)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService construye el servicio. movRepo y projRepo se usan para lecturas fuera de transacción.
func NewService(
	tx TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	movRepo repository.MovementRepository,
	projRepo repository.ProjectionRepository,
	publisher events.Publisher,
	log *logger.Logger,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 5 * time.Millisecond
	}
	if cfg.TransferMode == "" {
		cfg.TransferMode = TransferAtomic
	}
	s := &Service{
		tx:          tx,
		items:       itemRepo,
		locations:   locationRepo,
		movements:   movRepo,
		projections: projRepo,
		publisher:   publisher,
		log:         log.Component("ledger"),
		cfg:         cfg,
		ids:         newIDGenerator(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ReceiptOption datos opcionales de una recepción.
type ReceiptOption func(*entity.Receipt)

// WithUnitCost costo unitario de la recepción.
func WithUnitCost(cost decimal.Decimal) ReceiptOption {
	return func(r *entity.Receipt) { r.UnitCost = &cost }
}

// WithLot lote y fecha de vencimiento.
func WithLot(lotNumber string, expiresAt time.Time) ReceiptOption {
	return func(r *entity.Receipt) {
		r.LotNumber = lotNumber
		r.ExpiresAt = &expiresAt
	}
}

// RecordReceipt registra una entrada de mercancía.
func (s *Service) RecordReceipt(ctx context.Context, itemID, locationID string, qty decimal.Decimal, referenceID, actor string, opts ...ReceiptOption) (*entity.MovementEntry, error) {
	r := entity.Receipt{Quantity: qty, ReferenceID: referenceID}
	for _, o := range opts {
		o(&r)
	}
	return s.Record(ctx, itemID, locationID, r, actor)
}

// RecordSale registra una venta. El actor se toma del contexto.
func (s *Service) RecordSale(ctx context.Context, itemID, locationID string, qty decimal.Decimal, referenceID string) (*entity.MovementEntry, error) {
	return s.Record(ctx, itemID, locationID, entity.Sale{Quantity: qty, ReferenceID: referenceID}, ActorFrom(ctx))
}

// RecordUsage registra un consumo interno. El actor se toma del contexto.
func (s *Service) RecordUsage(ctx context.Context, itemID, locationID string, qty decimal.Decimal, note string) (*entity.MovementEntry, error) {
	return s.Record(ctx, itemID, locationID, entity.Usage{Quantity: qty, Note: note}, ActorFrom(ctx))
}

// RecordAdjustment registra un ajuste manual (delta con signo, motivo obligatorio).
func (s *Service) RecordAdjustment(ctx context.Context, itemID, locationID string, delta decimal.Decimal, reason, actor string) (*entity.MovementEntry, error) {
	return s.Record(ctx, itemID, locationID, entity.Adjustment{Change: delta, Reason: reason}, actor)
}

// RecordReturn registra una devolución de cliente.
func (s *Service) RecordReturn(ctx context.Context, itemID, locationID string, qty decimal.Decimal, referenceID, actor string) (*entity.MovementEntry, error) {
	return s.Record(ctx, itemID, locationID, entity.Return{Quantity: qty, ReferenceID: referenceID}, actor)
}

// Record valida la intención, anexa el movimiento y actualiza la proyección en una transacción.
// Ante conflicto de versión reintenta la misma intención contra el estado actual.
func (s *Service) Record(ctx context.Context, itemID, locationID string, in entity.Intent, actor string) (*entity.MovementEntry, error) {
	if err := entity.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, itemID, locationID); err != nil {
		return nil, err
	}
	key := entity.StockKey{ItemID: itemID, LocationID: locationID}

	var entry *entity.MovementEntry
	var proj *entity.StockProjection
	err := s.retry(ctx, func() error {
		return s.tx.Run(ctx, func(movRepo repository.MovementRepository, projRepo repository.ProjectionRepository, batchRepo repository.BatchRepository) error {
			current, err := projRepo.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			e, next, err := s.appendEntry(ctx, movRepo, batchRepo, current, in, actor)
			if err != nil {
				return err
			}
			if err := projRepo.Save(ctx, next, current.Version); err != nil {
				return err
			}
			entry, proj = e, next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("movement_id", entry.ID).Str("kind", string(entry.Kind)).
		Str("item_id", itemID).Str("location_id", locationID).
		Str("delta", entry.QuantityDelta.String()).Msg("movimiento registrado")
	s.publishApplied(ctx, entry, proj)
	return entry, nil
}

// appendEntry genera el ID ya con la fila bloqueada, aplica y anexa. No guarda la proyección.
func (s *Service) appendEntry(
	ctx context.Context,
	movRepo repository.MovementRepository,
	batchRepo repository.BatchRepository,
	current *entity.StockProjection,
	in entity.Intent,
	actor string,
) (*entity.MovementEntry, *entity.StockProjection, error) {
	now := s.now()
	e, err := entity.NewEntry(in, s.ids.next(now), current.ItemID, current.LocationID, actor, now)
	if err != nil {
		return nil, nil, err
	}
	next, err := inventory.Apply(current, e)
	if err != nil {
		return nil, nil, err
	}
	if err := movRepo.Append(ctx, e); err != nil {
		return nil, nil, err
	}
	if e.ExpiresAt != nil {
		b := &entity.Batch{
			MovementID: e.ID,
			ItemID:     e.ItemID,
			LocationID: e.LocationID,
			LotNumber:  e.LotNumber,
			ExpiresAt:  *e.ExpiresAt,
			Quantity:   e.QuantityDelta,
			ReceivedAt: e.Timestamp,
		}
		if err := batchRepo.Create(ctx, b); err != nil {
			return nil, nil, err
		}
	}
	return e, next, nil
}

// retry reintenta fn mientras falle por conflicto de versión, hasta MaxRetries reintentos.
func (s *Service) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= s.cfg.MaxRetries {
			break
		}
		s.log.Debug().Int("attempt", attempt+1).Msg("conflicto de versión, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * s.cfg.RetryBackoff):
		}
	}
	s.log.Warn().Err(err).Int("retries", s.cfg.MaxRetries).Msg("reintentos agotados")
	return fmt.Errorf("%w: %v", domain.ErrRetriesExhausted, err)
}

func (s *Service) checkRefs(ctx context.Context, itemID string, locationIDs ...string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if item == nil {
		return domain.ErrUnknownItem
	}
	for _, id := range locationIDs {
		loc, err := s.locations.GetByID(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if loc == nil || !loc.Active {
			return domain.ErrUnknownLocation
		}
	}
	return nil
}

func (s *Service) publishApplied(ctx context.Context, e *entity.MovementEntry, p *entity.StockProjection) {
	now := s.now()
	s.publisher.Publish(ctx, events.Event{Type: events.AppliedMovement, Key: e.Key(), Movement: e, OccurredAt: now})
	s.publisher.Publish(ctx, events.Event{Type: events.ProjectionChanged, Key: e.Key(), Movement: e, Projection: p, OccurredAt: now})
}
