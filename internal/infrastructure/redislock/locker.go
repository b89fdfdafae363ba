package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

var _ alerts.KeyLocker = (*Locker)(nil)

// ErrLockTimeout no se obtuvo el lock antes de que venciera el contexto.
var ErrLockTimeout = errors.New("redis lock: tiempo de espera agotado")

// release borra la clave solo si sigue siendo nuestra.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker lock por clave compartido entre instancias (SET NX con TTL). El TTL acota cuánto
// queda tomada una clave si el proceso muere con el lock.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
	log    *logger.Logger
}

// Config parámetros del cliente y del lock.
type Config struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// NewClient construye el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New construye el locker.
func New(client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl, retry: 25 * time.Millisecond, prefix: "lock:stock:", log: log.Component("redislock")}
}

// Lock espera hasta tomar la clave o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.prefix + key
	token := uuid.New().String()
	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(l.retry):
		}
	}
	return func() {
		// El contexto del llamador puede estar cancelado; liberar igual.
		if err := release.Run(context.WithoutCancel(ctx), l.client, []string{k}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("liberar lock")
		}
	}, nil
}
