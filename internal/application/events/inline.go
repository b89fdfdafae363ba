package events

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

var _ Publisher = (*Inline)(nil)
var _ Subscriber = (*Inline)(nil)

// Inline despachador síncrono: ejecuta los handlers dentro de Publish.
// Se usa en tests y en herramientas de línea de comandos.
type Inline struct {
	log      *logger.Logger
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewInline construye el despachador síncrono.
func NewInline(log *logger.Logger) *Inline {
	return &Inline{log: log, handlers: make(map[Type][]Handler)}
}

func (d *Inline) Subscribe(t Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

func (d *Inline) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	d.mu.RLock()
	handlers := d.handlers[ev.Type]
	d.mu.RUnlock()
	for _, h := range handlers {
		deliver(ctx, d.log, h, ev)
	}
}

// Recorder guarda los eventos publicados (tests).
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events copia de los eventos recibidos, opcionalmente filtrados por tipo.
func (r *Recorder) Events(types ...Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if len(types) == 0 || containsType(types, ev.Type) {
			out = append(out, ev)
		}
	}
	return out
}

func containsType(ts []Type, t Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
