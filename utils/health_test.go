package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestCheckHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	up := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() {
		_ = up.Close()
		_ = down.Close()
	})
	mongoOK := func(context.Context) error { return nil }

	status := CheckHealth(context.Background(), map[string]*redis.Client{"sessions": up}, mongoOK)
	assert.True(t, status.Healthy())
	assert.Equal(t, status, GetHealthStatus())

	status = CheckHealth(context.Background(), map[string]*redis.Client{"sessions": up, "locks": down}, mongoOK)
	assert.False(t, status.Healthy())
	assert.True(t, status.Redis["sessions"])
	assert.False(t, status.Redis["locks"])

	status = CheckHealth(context.Background(), nil, func(context.Context) error { return errors.New("no primary") })
	assert.False(t, status.Healthy())
}
