package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tableLockKeyPrefix = "table_lock"
	tableLockPoll      = 25 * time.Millisecond
)

// Release only deletes the key if it still holds our token, so a lock that
// expired and was taken by another request is left alone.
const tableLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrLockBusy is returned when the lock could not be taken before the wait ran out.
var ErrLockBusy = errors.New("table lock busy")

// TableLock serialises order placement per restaurant table across API
// instances. It narrows the race window only; storage constraints still
// decide correctness, so callers may proceed when the lock is unavailable.
// Key format: "table_lock:{restaurantID}:{tableNo}"
type TableLock struct {
	client *RedisClient
	script *redis.Script
	ttl    time.Duration
}

// NewTableLock returns a TableLock whose keys expire after ttl.
func NewTableLock(r *RedisClient, ttl time.Duration) *TableLock {
	return &TableLock{
		client: r,
		script: redis.NewScript(tableLockReleaseScript),
		ttl:    ttl,
	}
}

// Acquire polls until the lock is taken, ctx ends or one TTL has passed.
// The returned release func is safe to call once the caller is done.
func (l *TableLock) Acquire(ctx context.Context, restaurantID uuid.UUID, tableNo int) (func(), error) {
	if l.ttl <= 0 {
		return nil, fmt.Errorf("table lock: ttl must be positive")
	}
	key := l.key(restaurantID, tableNo)
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.Client().SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("table lock: %w", err)
		}
		if ok {
			return func() {
				_ = l.script.Run(context.Background(), l.client.Client(), []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tableLockPoll):
		}
	}
}

func (l *TableLock) key(restaurantID uuid.UUID, tableNo int) string {
	return fmt.Sprintf("%s:%s:%d", tableLockKeyPrefix, restaurantID, tableNo)
}
