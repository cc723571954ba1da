package database

import (
	"context"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/redis/go-redis/v9"
)

type PG interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// RedisConn is a single connection checked out of the pool.
// Close returns it to the pool.
type RedisConn interface {
	Info(ctx context.Context, sections ...string) *redis.StringCmd
	DBSize(ctx context.Context) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

type Redis interface {
	Acquire(ctx context.Context) (RedisConn, error)
}
