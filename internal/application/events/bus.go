package events

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const (
	handlerAttempts = 3
	handlerBackoff  = 50 * time.Millisecond

	projectionSendTimeout = 2 * time.Second
)

var _ Publisher = (*Bus)(nil)
var _ Subscriber = (*Bus)(nil)

// Bus despachador asíncrono en proceso. Los eventos de una misma clave van siempre al mismo
// worker, así se procesan en el orden en que se publicaron.
type Bus struct {
	log    *logger.Logger
	queues []chan Event

	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus construye el bus con workers colas de queueSize eventos cada una.
func NewBus(log *logger.Logger, workers, queueSize int) *Bus {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	queues := make([]chan Event, workers)
	for i := range queues {
		queues[i] = make(chan Event, queueSize)
	}
	return &Bus{
		log:      log.Component("event_bus"),
		queues:   queues,
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registra un handler para un tipo de evento.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish encola el evento. ProjectionChanged espera hasta projectionSendTimeout a que la
// cola tenga espacio, o hasta que ctx se cancele; los demás tipos son notificaciones y se
// descartan con un aviso si la cola está llena.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	q := b.queues[b.shard(ev)]
	select {
	case q <- ev:
		return
	default:
	}
	if ev.Type != ProjectionChanged {
		b.drop(ev, "cola de eventos llena")
		return
	}

	timer := time.NewTimer(projectionSendTimeout)
	defer timer.Stop()
	select {
	case q <- ev:
	case <-ctx.Done():
		b.drop(ev, "contexto cancelado con la cola llena")
	case <-timer.C:
		b.drop(ev, "cola de eventos llena tras esperar")
	}
}

// drop registra un evento perdido; el barrido periódico de alertas recupera el estado.
func (b *Bus) drop(ev Event, reason string) {
	b.log.Warn().Str("type", string(ev.Type)).Str("key", ev.Key.String()).Msg(reason + ", evento descartado")
}

func (b *Bus) shard(ev Event) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ev.Key.String()))
	return int(h.Sum32() % uint32(len(b.queues)))
}

// Run arranca los workers y bloquea hasta que ctx se cancele.
func (b *Bus) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, q := range b.queues {
		g.Go(func() error {
			b.log.Debug().Int("worker", i).Msg("worker de eventos iniciado")
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-q:
					b.dispatch(ctx, ev)
				}
			}
		})
	}
	return g.Wait()
}

func (b *Bus) dispatch(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := b.handlers[ev.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(ctx, b.log, h, ev)
	}
}

// deliver ejecuta h con reintentos acotados; el fallo final solo se registra.
func deliver(ctx context.Context, log *logger.Logger, h Handler, ev Event) {
	var err error
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		if err = h(ctx, ev); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * handlerBackoff):
		}
	}
	log.Error().Err(err).Str("type", string(ev.Type)).Str("key", ev.Key.String()).Msg("handler de eventos falló")
}
