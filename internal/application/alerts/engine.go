package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Config valores por defecto del motor.
type Config struct {
	ExpirationLookaheadDays int
	PriceChangeThresholdPct decimal.Decimal
}

// Engine motor de alertas con estado. Es el único que escribe State y ResolvedAt.
type Engine struct {
	projections repository.ProjectionRepository
	policies    repository.PolicyRepository
	batches     repository.BatchRepository
	alerts      repository.AlertRepository
	locker      KeyLocker
	publisher   events.Publisher
	log         *logger.Logger
	cfg         Config
	now         func() time.Time
}

// NewEngine construye el motor.
func NewEngine(
	projRepo repository.ProjectionRepository,
	policyRepo repository.PolicyRepository,
	batchRepo repository.BatchRepository,
	alertRepo repository.AlertRepository,
	locker KeyLocker,
	publisher events.Publisher,
	log *logger.Logger,
	cfg Config,
) *Engine {
	return &Engine{
		projections: projRepo,
		policies:    policyRepo,
		batches:     batchRepo,
		alerts:      alertRepo,
		locker:      locker,
		publisher:   publisher,
		log:         log.Component("alerts"),
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// step cantidades antes y después del movimiento que originó la evaluación.
type step struct {
	from, to decimal.Decimal
}

// HandleProjectionChanged handler del bus para ProjectionChanged. Si el evento trae el
// movimiento, las bandas atravesadas en un descenso quedan registradas en el historial.
func (e *Engine) HandleProjectionChanged(ctx context.Context, ev events.Event) error {
	var st *step
	if ev.Movement != nil && ev.Projection != nil && ev.Movement.QuantityDelta.IsNegative() {
		st = &step{from: ev.Projection.Quantity.Sub(ev.Movement.QuantityDelta), to: ev.Projection.Quantity}
	}
	return e.evaluate(ctx, ev.Key, st)
}

// Evaluate recalcula las condiciones de la clave y reconcilia las alertas activas:
// actualiza la foto de las que siguen vigentes, resuelve las que ya no aplican y abre las nuevas.
// Es idempotente: evaluar dos veces el mismo estado no produce transiciones.
func (e *Engine) Evaluate(ctx context.Context, key entity.StockKey) error {
	return e.evaluate(ctx, key, nil)
}

func (e *Engine) evaluate(ctx context.Context, key entity.StockKey, st *step) error {
	unlock, err := e.locker.Lock(ctx, key.String())
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	p, err := e.projections.Get(ctx, key)
	if err != nil {
		return err
	}
	policy, err := e.policies.Resolve(ctx, key)
	if err != nil {
		return err
	}
	var batches []*entity.Batch
	if policy != nil && policy.ExpirationTrackingEnabled {
		if batches, err = e.batches.ListByKey(ctx, key); err != nil {
			return err
		}
	}
	now := e.now()
	conds := inventory.Conditions(p, policy, batches, inventory.ConditionOptions{
		ExpirationLookaheadDays: e.cfg.ExpirationLookaheadDays,
		PriceChangeThresholdPct: e.cfg.PriceChangeThresholdPct,
	}, now)

	active, err := e.alerts.ListActiveByKey(ctx, key)
	if err != nil {
		return err
	}
	want := make(map[entity.AlertKind]inventory.Condition, len(conds))
	for _, c := range conds {
		want[c.Kind] = c
	}
	if st != nil {
		if err := e.passThrough(ctx, key, inventory.CrossedBands(st.from, st.to, policy), active, want, now); err != nil {
			return err
		}
	}

	for _, a := range active {
		c, ok := want[a.Kind]
		if !ok {
			if err := e.resolve(ctx, a, now); err != nil {
				return err
			}
			continue
		}
		delete(want, a.Kind)
		if a.Severity == c.Severity && a.Snapshot.Equal(c.Snapshot) {
			continue
		}
		a.Severity = c.Severity
		a.Snapshot = c.Snapshot
		a.UpdatedAt = now
		if err := e.alerts.Update(ctx, a); err != nil {
			return err
		}
	}

	for _, c := range conds {
		if _, pending := want[c.Kind]; !pending {
			continue
		}
		if _, err := e.open(ctx, key, c, now); err != nil {
			return err
		}
	}
	return nil
}

// passThrough abre y resuelve en el acto la alerta de cada banda atravesada. Se omiten las
// bandas que ya tienen alerta activa o que siguen vigentes con el estado actual.
func (e *Engine) passThrough(ctx context.Context, key entity.StockKey, crossed []inventory.Condition,
	active []*entity.Alert, want map[entity.AlertKind]inventory.Condition, now time.Time) error {
	for _, c := range crossed {
		if _, ok := want[c.Kind]; ok || hasKind(active, c.Kind) {
			continue
		}
		a, err := e.open(ctx, key, c, now)
		if err != nil {
			return err
		}
		if a == nil {
			continue
		}
		if err := e.resolve(ctx, a, now); err != nil {
			return err
		}
	}
	return nil
}

func hasKind(list []*entity.Alert, k entity.AlertKind) bool {
	for _, a := range list {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// open crea la alerta. Devuelve nil sin error si otra instancia ya la tenía abierta.
func (e *Engine) open(ctx context.Context, key entity.StockKey, c inventory.Condition, now time.Time) (*entity.Alert, error) {
	a := &entity.Alert{
		ID:         uuid.New().String(),
		ItemID:     key.ItemID,
		LocationID: key.LocationID,
		Kind:       c.Kind,
		Severity:   c.Severity,
		State:      entity.AlertOpen,
		OpenedAt:   now,
		UpdatedAt:  now,
		Snapshot:   c.Snapshot,
	}
	if err := e.alerts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil
		}
		return nil, err
	}
	e.log.Info().Str("alert_id", a.ID).Str("kind", string(a.Kind)).Str("severity", string(a.Severity)).
		Str("item_id", key.ItemID).Str("location_id", key.LocationID).Msg("alerta abierta")
	e.publisher.Publish(ctx, events.Event{Type: events.AlertOpened, Key: key, Alert: a, OccurredAt: now})
	return a, nil
}

func (e *Engine) resolve(ctx context.Context, a *entity.Alert, now time.Time) error {
	a.State = entity.AlertResolved
	a.ResolvedAt = &now
	a.UpdatedAt = now
	if err := e.alerts.Update(ctx, a); err != nil {
		return err
	}
	e.log.Info().Str("alert_id", a.ID).Str("kind", string(a.Kind)).
		Str("item_id", a.ItemID).Str("location_id", a.LocationID).Msg("alerta resuelta")
	e.publisher.Publish(ctx, events.Event{
		Type:       events.AlertResolved,
		Key:        entity.StockKey{ItemID: a.ItemID, LocationID: a.LocationID},
		Alert:      a,
		OccurredAt: now,
	})
	return nil
}

// Acknowledge open -> acknowledged. Reconocer una alerta ya reconocida no cambia nada.
func (e *Engine) Acknowledge(ctx context.Context, id, actor string) (*entity.Alert, error) {
	return e.transition(ctx, id, func(a *entity.Alert) (bool, error) {
		switch a.State {
		case entity.AlertAcknowledged:
			return false, nil
		case entity.AlertOpen:
			a.State = entity.AlertAcknowledged
			a.AcknowledgedBy = actor
			return true, nil
		}
		return false, domain.ErrInvalidTransition
	})
}

// Dismiss open|acknowledged -> dismissed. La alerta sigue activa (no se reabre) hasta que la
// condición desaparezca y el motor la resuelva.
func (e *Engine) Dismiss(ctx context.Context, id, actor string) (*entity.Alert, error) {
	return e.transition(ctx, id, func(a *entity.Alert) (bool, error) {
		switch a.State {
		case entity.AlertDismissed:
			return false, nil
		case entity.AlertOpen, entity.AlertAcknowledged:
			a.State = entity.AlertDismissed
			a.DismissedBy = actor
			return true, nil
		}
		return false, domain.ErrInvalidTransition
	})
}

func (e *Engine) transition(ctx context.Context, id string, apply func(*entity.Alert) (bool, error)) (*entity.Alert, error) {
	a, err := e.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := e.locker.Lock(ctx, entity.StockKey{ItemID: a.ItemID, LocationID: a.LocationID}.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Releer bajo el bloqueo: una evaluación pudo resolverla entretanto.
	if a, err = e.alerts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	changed, err := apply(a)
	if err != nil || !changed {
		return a, err
	}
	a.UpdatedAt = e.now()
	if err := e.alerts.Update(ctx, a); err != nil {
		return nil, err
	}
	e.log.Info().Str("alert_id", a.ID).Str("state", string(a.State)).Msg("alerta actualizada")
	return a, nil
}

// List alertas según filtro (por defecto las activas).
func (e *Engine) List(ctx context.Context, f entity.AlertFilter) ([]*entity.Alert, error) {
	return e.alerts.List(ctx, f)
}

const sweepPageSize = 200

// Sweep reevalúa todas las claves con proyección. Recupera eventos perdidos y hace avanzar
// las alertas que dependen del tiempo (vencimientos).
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	n := 0
	for offset := 0; ; offset += sweepPageSize {
		list, err := e.projections.List(ctx, entity.ProjectionFilter{Limit: sweepPageSize, Offset: offset})
		if err != nil {
			return n, err
		}
		for _, p := range list {
			if err := ctx.Err(); err != nil {
				return n, err
			}
			if err := e.Evaluate(ctx, p.Key()); err != nil {
				e.log.Error().Err(err).Str("key", p.Key().String()).Msg("evaluación en barrido fallida")
				continue
			}
			n++
		}
		if len(list) < sweepPageSize {
			return n, nil
		}
	}
}
