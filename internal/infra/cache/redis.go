package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const cycleLockKey = "voter:cycle_lock"

// RedisGuard не допускает перекрытия циклов через SetNX с TTL.
// TTL — страховка на случай аварийного завершения без release.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard создаёт сторож циклов.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Acquire берёт блокировку цикла. ok=false — предыдущий цикл ещё идёт.
func (g *RedisGuard) Acquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	ok, err := g.client.SetNX(ctx, cycleLockKey, "1", ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		_ = g.client.Del(context.Background(), cycleLockKey).Err()
	}
	return release, true, nil
}

// LocalGuard — внутрипроцессный сторож на случай, когда Redis не настроен.
type LocalGuard struct {
	busy atomic.Bool
}

// NewLocalGuard создаёт сторож.
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

// Acquire берёт блокировку цикла внутри процесса.
func (g *LocalGuard) Acquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	release := func() { g.busy.Store(false) }
	return release, true, nil
}
