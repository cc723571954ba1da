package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/ilyadubrovsky/redis-admin/internal/database"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

func Options(cfg config.Redis) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		opts = parsed
	}

	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolTimeout = cfg.PoolTimeout
	// a failed round trip is final
	opts.MaxRetries = -1

	return opts, nil
}

func New(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err = client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

type connFactory struct {
	client *redis.Client
}

func NewConnFactory(client *redis.Client) *connFactory {
	return &connFactory{
		client: client,
	}
}

// Acquire pins one pooled connection. The caller must Close it.
func (f *connFactory) Acquire(ctx context.Context) (database.RedisConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return f.client.Conn(), nil
}
