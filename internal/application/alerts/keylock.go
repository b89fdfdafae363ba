package alerts

import (
	"context"
	"sync"
)

// KeyLocker exclusión mutua por clave. La evaluación de una clave nunca corre en paralelo
// consigo misma; claves distintas no compiten.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

var _ KeyLocker = (*LocalLocker)(nil)

// LocalLocker mutex por clave dentro del proceso. Las entradas se liberan cuando nadie las usa.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker construye el bloqueo en proceso.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock espera el turno de la clave o hasta que ctx se cancele.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
