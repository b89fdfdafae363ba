package redislock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/redislock"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Requiere un Redis real: LEDGER_REDIS_ADDR=localhost:6379.
func newLocker(t *testing.T) *redislock.Locker {
	t.Helper()
	addr := os.Getenv("LEDGER_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEDGER_REDIS_ADDR no definido")
	}
	client, err := redislock.NewClient(context.Background(), redislock.Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redislock.New(client, 2*time.Second, logger.Nop())
}

func TestLocker_ExclusionYLiberacion(t *testing.T) {
	l := newLocker(t)
	key := "test|" + time.Now().Format(time.RFC3339Nano)

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, redislock.ErrLockTimeout)

	unlock()
	again, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	again()
}

func TestLocker_ExpiraPorTTL(t *testing.T) {
	l := newLocker(t)
	key := "ttl|" + time.Now().Format(time.RFC3339Nano)

	_, err := l.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err, "el TTL libera la clave aunque el dueño no la suelte")
	unlock()
}
