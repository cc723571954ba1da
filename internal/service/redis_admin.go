package service

import (
	"context"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
)

// RedisAdmin is the administrative facade over a Redis connection factory.
//
// Reads of diagnostics, key listings and values degrade softly: the plain
// accessors return an empty or absent result on any failure, which looks the
// same as "nothing found". Callers that need to tell the two apart use the
// ...Result variants. All other operations return the failure.
type RedisAdmin interface {
	ServerInfo(ctx context.Context) []domain.ServerInfoEntry
	ServerInfoResult(ctx context.Context) domain.Result[[]domain.ServerInfoEntry]
	MemoryUsage(ctx context.Context) (*domain.MetricSnapshot, error)
	KeyCount(ctx context.Context) (*domain.MetricSnapshot, error)
	FindKeys(ctx context.Context, pattern string) []string
	FindKeysResult(ctx context.Context, pattern string) domain.Result[[]string]
	Value(ctx context.Context, key string) (string, bool)
	ValueResult(ctx context.Context, key string) domain.Result[string]
	SetValue(ctx context.Context, key, value string) (bool, error)
	DeleteKeys(ctx context.Context, keys ...string) (int64, error)
	ExistsCount(ctx context.Context, keys ...string) (int64, error)
	RemainingTTL(ctx context.Context, key string) (int64, error)
	SetExpiry(ctx context.Context, key string, milliseconds int64) (int64, error)
}
