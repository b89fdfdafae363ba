package events_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

func TestBus_EntregaEnOrdenPorClave(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 4, 64)
	key := entity.StockKey{ItemID: "i1", LocationID: "l1"}

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	bus.Subscribe(events.ProjectionChanged, func(_ context.Context, ev events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.Movement.ID)
		if len(seen) == 20 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bus.Run(ctx) }()

	var want []string
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		want = append(want, id)
		bus.Publish(ctx, events.Event{Type: events.ProjectionChanged, Key: key, Movement: &entity.MovementEntry{ID: id}})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no se entregaron todos los eventos")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, seen, "los eventos de una clave se procesan en orden")
}

func TestBus_ReintentaHandlerFallido(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 8)
	var calls atomic.Int32
	done := make(chan struct{})
	bus.Subscribe(events.AlertOpened, func(context.Context, events.Event) error {
		if calls.Add(1) < 3 {
			return errors.New("broker no disponible")
		}
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bus.Run(ctx) }()

	bus.Publish(ctx, events.Event{Type: events.AlertOpened})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el handler no se reintentó")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_ColaLlena_DescartaNotificaciones(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 1)
	// Sin Run nadie consume: el segundo evento se descarta sin bloquear.
	start := time.Now()
	bus.Publish(context.Background(), events.Event{Type: events.AlertOpened})
	bus.Publish(context.Background(), events.Event{Type: events.AlertOpened})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBus_ColaLlena_ProjectionChangedEsperaAlWorker(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 1)
	key := entity.StockKey{ItemID: "i1", LocationID: "l1"}
	var got atomic.Int32
	done := make(chan struct{})
	bus.Subscribe(events.ProjectionChanged, func(context.Context, events.Event) error {
		if got.Add(1) == 3 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = bus.Run(ctx)
	}()

	for i := 0; i < 3; i++ {
		bus.Publish(ctx, events.Event{Type: events.ProjectionChanged, Key: key})
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("se entregaron %d de 3 cambios de proyección", got.Load())
	}
}

func TestBus_ColaLlena_ProjectionChangedRespetaCancelacion(t *testing.T) {
	bus := events.NewBus(logger.Nop(), 1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	bus.Publish(ctx, events.Event{Type: events.ProjectionChanged})
	start := time.Now()
	bus.Publish(ctx, events.Event{Type: events.ProjectionChanged})
	assert.Less(t, time.Since(start), time.Second, "la espera termina con el contexto")
}

func TestInline_EjecutaSincrono(t *testing.T) {
	d := events.NewInline(logger.Nop())
	var got []events.Type
	d.Subscribe(events.AlertResolved, func(_ context.Context, ev events.Event) error {
		got = append(got, ev.Type)
		return nil
	})
	d.Publish(context.Background(), events.Event{Type: events.AlertResolved})
	d.Publish(context.Background(), events.Event{Type: events.AlertOpened})
	require.Len(t, got, 1)
	assert.Equal(t, events.AlertResolved, got[0])
}
