package ledger

import (
	"context"
	"iter"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

const (
	historyPageSize    = 100
	historyMaxPageSize = 500
)

// GetMovementHistory recorre el historial de una clave, más reciente primero, desde el cursor
// (exclusivo; vacío = desde el último movimiento). Pagina internamente.
func (s *Service) GetMovementHistory(ctx context.Context, itemID, locationID string, rng entity.HistoryRange, cursor string) iter.Seq2[*entity.MovementEntry, error] {
	key := entity.StockKey{ItemID: itemID, LocationID: locationID}
	return func(yield func(*entity.MovementEntry, error) bool) {
		before := cursor
		for {
			page, err := s.movements.List(ctx, key, entity.HistoryQuery{Range: rng, Before: before, Limit: historyPageSize})
			if err != nil {
				yield(nil, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if len(page) < historyPageSize {
				return
			}
			before = page[len(page)-1].ID
		}
	}
}

// HistoryPage una página del historial y el cursor de la siguiente (vacío si no hay más).
func (s *Service) HistoryPage(ctx context.Context, itemID, locationID string, q entity.HistoryQuery) ([]*entity.MovementEntry, string, error) {
	if q.Limit <= 0 {
		q.Limit = historyPageSize
	}
	if q.Limit > historyMaxPageSize {
		return nil, "", domain.ErrInvalidInput
	}
	limit := q.Limit
	q.Limit++
	key := entity.StockKey{ItemID: itemID, LocationID: locationID}
	page, err := s.movements.List(ctx, key, q)
	if err != nil {
		return nil, "", err
	}
	if len(page) <= limit {
		return page, "", nil
	}
	page = page[:limit]
	return page, page[limit-1].ID, nil
}
