package ledger

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// idGenerator ULIDs monótonos dentro del proceso: dos IDs del mismo milisegundo se ordenan
// por orden de generación, y un reloj que retrocede no produce IDs menores.
type idGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	last    uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGenerator) next(at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := ulid.Timestamp(at)
	if ms < g.last {
		ms = g.last
	}
	g.last = ms
	return ulid.MustNew(ms, g.entropy).String()
}
