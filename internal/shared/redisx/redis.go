package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/joinery/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	NotificationChannel = "joinery:notifications"
	signatureKeyPrefix  = "joinery:signature:"
)

// NewClient builds a redis client, or nil when redis is not configured.
func NewClient(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// Deduper drops repeated deliveries of the same envelope.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// FirstSeen claims key and reports whether this is its first delivery.
func (d *Deduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	return d.rdb.SetNX(ctx, signatureKeyPrefix+key, time.Now().Unix(), d.ttl).Result()
}

// Forget releases a claim so the provider's retry is processed again.
func (d *Deduper) Forget(ctx context.Context, key string) error {
	return d.rdb.Del(ctx, signatureKeyPrefix+key).Err()
}

// Publisher fans notifications out to other consumers over pub/sub.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = NotificationChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}
