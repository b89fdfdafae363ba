package ledger

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// GetProjection stock actual de una clave (cero si no tiene historial).
func (s *Service) GetProjection(ctx context.Context, itemID, locationID string) (*entity.StockProjection, error) {
	return s.projections.Get(ctx, entity.StockKey{ItemID: itemID, LocationID: locationID})
}

// ListProjections proyecciones según filtro.
func (s *Service) ListProjections(ctx context.Context, f entity.ProjectionFilter) ([]*entity.StockProjection, error) {
	return s.projections.List(ctx, f)
}

// Rebuild reconstruye la proyección reproduciendo todo el historial. No escribe.
func (s *Service) Rebuild(ctx context.Context, itemID, locationID string) (*entity.StockProjection, error) {
	key := entity.StockKey{ItemID: itemID, LocationID: locationID}
	entries, err := s.movements.ListForReplay(ctx, key)
	if err != nil {
		return nil, err
	}
	return inventory.Fold(key, entries), nil
}

// Audit compara la proyección almacenada con la reconstrucción.
// Devuelve *domain.ProjectionDriftError si las cantidades difieren.
func (s *Service) Audit(ctx context.Context, itemID, locationID string) (*entity.StockProjection, error) {
	stored, err := s.GetProjection(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	replayed, err := s.Rebuild(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	if !stored.Quantity.Equal(replayed.Quantity) {
		s.log.Warn().Str("item_id", itemID).Str("location_id", locationID).
			Str("stored", stored.Quantity.String()).Str("replayed", replayed.Quantity.String()).
			Msg("proyección desalineada")
		return replayed, &domain.ProjectionDriftError{
			ItemID: itemID, LocationID: locationID,
			Stored: stored.Quantity, Replayed: replayed.Quantity,
		}
	}
	return replayed, nil
}

// Repair reescribe la proyección desde el historial dentro de una transacción. La versión
// avanza siempre, así cualquier escritura concurrente basada en la versión anterior falla.
func (s *Service) Repair(ctx context.Context, itemID, locationID string) (*entity.StockProjection, error) {
	key := entity.StockKey{ItemID: itemID, LocationID: locationID}
	var repaired *entity.StockProjection
	err := s.retry(ctx, func() error {
		return s.tx.Run(ctx, func(movRepo repository.MovementRepository, projRepo repository.ProjectionRepository, _ repository.BatchRepository) error {
			current, err := projRepo.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			entries, err := movRepo.ListForReplay(ctx, key)
			if err != nil {
				return err
			}
			next := inventory.Fold(key, entries)
			next.Version = current.Version + 1
			if err := projRepo.Save(ctx, next, current.Version); err != nil {
				return err
			}
			repaired = next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("item_id", itemID).Str("location_id", locationID).
		Str("quantity", repaired.Quantity.String()).Msg("proyección reconstruida")
	s.publisher.Publish(ctx, events.Event{Type: events.ProjectionChanged, Key: key, Projection: repaired, OccurredAt: s.now()})
	return repaired, nil
}
