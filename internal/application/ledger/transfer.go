package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TransferStock mueve stock entre ubicaciones: salida en origen y entrada en destino con el
// mismo TransferGroupID. Devuelve el ID del grupo.
func (s *Service) TransferStock(ctx context.Context, itemID, fromID, toID string, qty decimal.Decimal, actor string) (string, error) {
	if fromID == toID {
		return "", domain.ErrSameLocation
	}
	groupID := uuid.New().String()
	out := entity.TransferOut{Quantity: qty, GroupID: groupID}
	in := entity.TransferIn{Quantity: qty, GroupID: groupID}
	if err := entity.Validate(out); err != nil {
		return "", err
	}
	if err := s.checkRefs(ctx, itemID, fromID, toID); err != nil {
		return "", err
	}
	src := entity.StockKey{ItemID: itemID, LocationID: fromID}
	dst := entity.StockKey{ItemID: itemID, LocationID: toID}

	if s.cfg.TransferMode == TransferSaga {
		return groupID, s.transferSaga(ctx, src, dst, out, in, actor)
	}
	return groupID, s.transferAtomic(ctx, src, dst, out, in, actor)
}

type leg struct {
	key    entity.StockKey
	intent entity.Intent
}

// transferAtomic ambas patas en una transacción. Las filas se bloquean en orden de clave
// para que dos traslados opuestos no se bloqueen mutuamente.
func (s *Service) transferAtomic(ctx context.Context, src, dst entity.StockKey, out, in entity.Intent, actor string) error {
	legs := []leg{{src, out}, {dst, in}}
	var entries []*entity.MovementEntry
	var projs []*entity.StockProjection

	err := s.retry(ctx, func() error {
		entries, projs = nil, nil
		return s.tx.Run(ctx, func(movRepo repository.MovementRepository, projRepo repository.ProjectionRepository, batchRepo repository.BatchRepository) error {
			locked := []entity.StockKey{src, dst}
			sort.Slice(locked, func(i, j int) bool { return locked[i].String() < locked[j].String() })
			current := make(map[entity.StockKey]*entity.StockProjection, 2)
			for _, k := range locked {
				p, err := projRepo.GetForUpdate(ctx, k)
				if err != nil {
					return err
				}
				current[k] = p
			}
			for _, l := range legs {
				p := current[l.key]
				e, next, err := s.appendEntry(ctx, movRepo, batchRepo, p, l.intent, actor)
				if err != nil {
					return err
				}
				if err := projRepo.Save(ctx, next, p.Version); err != nil {
					return err
				}
				entries = append(entries, e)
				projs = append(projs, next)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	for i := range entries {
		s.publishApplied(ctx, entries[i], projs[i])
	}
	s.log.Info().Str("transfer_group_id", entries[0].TransferGroupID).Str("item_id", src.ItemID).
		Str("from", src.LocationID).Str("to", dst.LocationID).Msg("traslado registrado")
	return nil
}

// transferSaga confirma cada pata por separado. Si la entrada en destino falla después de
// confirmar la salida, se anexa un ajuste positivo en origen y se devuelve TransferFailedError.
func (s *Service) transferSaga(ctx context.Context, src, dst entity.StockKey, out, in entity.Intent, actor string) error {
	if _, err := s.Record(ctx, src.ItemID, src.LocationID, out, actor); err != nil {
		return err
	}
	if _, err := s.Record(ctx, dst.ItemID, dst.LocationID, in, actor); err != nil {
		groupID := out.(entity.TransferOut).GroupID
		comp := entity.Adjustment{
			Change:      out.(entity.TransferOut).Quantity,
			Reason:      fmt.Sprintf("compensación del traslado %s", groupID),
			ReferenceID: groupID,
		}
		tfe := &domain.TransferFailedError{TransferGroupID: groupID, Err: err}
		entry, cerr := s.Record(context.WithoutCancel(ctx), src.ItemID, src.LocationID, comp, entity.ActorSystem)
		if cerr != nil {
			s.log.Error().Err(cerr).Str("transfer_group_id", groupID).Msg("compensación de traslado fallida")
			return tfe
		}
		tfe.CompensatingEntryID = entry.ID
		s.log.Warn().Err(err).Str("transfer_group_id", groupID).Str("compensating_entry_id", entry.ID).
			Msg("traslado compensado")
		return tfe
	}
	return nil
}
