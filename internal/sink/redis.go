// internal/sink/redis.go
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tamzrod/board-probe/internal/config"
)

// publisher is the subset of *redis.Client the tee needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Redis tees marker lines to a Pub/Sub channel so a host collector can
// subscribe instead of scraping the console.
type Redis struct {
	client  publisher
	channel string
	timeout time.Duration
}

// NewRedis builds the tee. The connection is lazy: an unreachable server
// surfaces as an Emit error, never as a probe failure.
func NewRedis(cfg config.RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 1,
	})
	return newRedis(client, cfg.Channel, time.Duration(cfg.TimeoutMs)*time.Millisecond)
}

func newRedis(c publisher, channel string, timeout time.Duration) *Redis {
	return &Redis{client: c, channel: channel, timeout: timeout}
}

func (r *Redis) Emit(ctx context.Context, line []byte) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.client.Publish(ctx, r.channel, line).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", r.channel, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
