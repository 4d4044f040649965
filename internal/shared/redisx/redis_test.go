package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/joinery/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestNewClientDisabled(t *testing.T) {
	assert.Nil(t, NewClient(config.RedisConfig{}))

	rdb := NewClient(config.RedisConfig{Host: "cache", Port: 6380, DB: 2})
	require.NotNil(t, rdb)
	defer rdb.Close()
	assert.Equal(t, "cache:6380", rdb.Options().Addr)
	assert.Equal(t, 2, rdb.Options().DB)
}

func TestDeduperSurfacesConnectionErrors(t *testing.T) {
	d := NewDeduper(unreachable(t), time.Minute)
	first, err := d.FirstSeen(context.Background(), "env-1")
	assert.Error(t, err)
	assert.False(t, first)
	assert.Error(t, d.Forget(context.Background(), "env-1"))
}

func TestPublisher(t *testing.T) {
	p := NewPublisher(unreachable(t), "")
	assert.Equal(t, NotificationChannel, p.channel)
	assert.Error(t, p.Publish(context.Background(), map[string]string{"type": "x"}))

	assert.Error(t, p.Publish(context.Background(), make(chan int)))
}
