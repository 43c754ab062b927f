package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Redis     map[string]bool `json:"redis"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether every dependency answered the last check.
func (h HealthStatus) Healthy() bool {
	if !h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every dependency once and stores the result.
func CheckHealth(ctx context.Context, redisClients map[string]*redis.Client, mongoPing func(context.Context) error) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{Redis: make(map[string]bool, len(redisClients)), CheckedAt: time.Now()}
	for name, client := range redisClients {
		status.Redis[name] = client.Ping(ctx).Err() == nil
	}
	status.Mongo = mongoPing != nil && mongoPing(ctx) == nil

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor checks now and then every interval until ctx ends.
func StartHealthMonitor(ctx context.Context, interval time.Duration, redisClients map[string]*redis.Client, mongoPing func(context.Context) error) {
	CheckHealth(ctx, redisClients, mongoPing)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoPing)
			}
		}
	}()
}
