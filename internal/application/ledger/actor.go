package ledger

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

type actorKey struct{}

// WithActor asocia el actor (usuario autenticado) al contexto.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom devuelve el actor del contexto o "system".
func ActorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return entity.ActorSystem
}
