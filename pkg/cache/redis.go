package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/timetable-api/pkg/config"
)

const (
	clientName  = "timetable-api"
	pingTimeout = 5 * time.Second
)

// Options maps the Redis settings shared by the session store and the realtime channel.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		ClientName: clientName,
		Password:   cfg.Password,
		DB:         cfg.DB,
	}
}

// NewRedis connects and pings, giving up when ctx ends or after pingTimeout.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, opts.DB, err)
	}
	return client, nil
}
