package utils

import (
	"context"
	"log"
	"time"

	"appointly/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

var (
	// SessionClient stores booking sessions and cancellation quotes.
	SessionClient *redis.Client
	// LockClient holds provider-day booking locks.
	LockClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects the session and lock clients.
func InitRedis() {
	SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Sessions")
	LockClient = newRedisClient(config.AppConfig.RedisLockDB, "Locks")
}

func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		InitRedis()
	}
	return SessionClient
}

func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitRedis()
	}
	return LockClient
}

// QueueRedisOpt is the asynq connection for background tasks.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
