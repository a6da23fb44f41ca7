package worker

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const dedupTTL = 24 * time.Hour

// Deduper reports whether an event id is seen for the first time.
type Deduper interface {
	FirstDelivery(ctx context.Context, eventID string) (bool, error)
}

type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(redisURL string) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisDeduper{client: redis.NewClient(opts), ttl: dedupTTL}, nil
}

func (d *RedisDeduper) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, "notification:session.booked:"+eventID, 1, d.ttl).Result()
}

func (d *RedisDeduper) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

func (d *RedisDeduper) Close() error {
	return d.client.Close()
}

// AlwaysFirst treats every delivery as new. Used when REDIS_URL is not set.
type AlwaysFirst struct{}

func (AlwaysFirst) FirstDelivery(context.Context, string) (bool, error) { return true, nil }
