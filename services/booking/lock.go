package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockBusy means another booking holds the provider-day lock.
var ErrLockBusy = errors.New("provider day lock is held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DayLocker serialises bookings per provider and calendar date across instances.
type DayLocker struct {
	Client   *redis.Client
	TTL      time.Duration
	Attempts int
	Backoff  time.Duration
}

// DayLock is a held lock; Release is safe to call more than once.
type DayLock struct {
	key    string
	token  string
	client *redis.Client
}

func lockKey(providerID, date string) string {
	return fmt.Sprintf("booking:lock:%s:%s", providerID, date)
}

func (l *DayLocker) Acquire(ctx context.Context, providerID, date string) (*DayLock, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	attempts := l.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := l.Backoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}

	key := lockKey(providerID, date)
	token := uuid.New().String()
	for i := 0; i < attempts; i++ {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
		}
		if ok {
			return &DayLock{key: key, token: token, client: l.Client}, nil
		}
		if i < attempts-1 {
			select {
			case <-time.After(backoff * time.Duration(i+1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, ErrLockBusy
}

// Release deletes the lock only if this holder still owns it.
func (d *DayLock) Release(ctx context.Context) error {
	if d == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, d.client, []string{d.key}, d.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
