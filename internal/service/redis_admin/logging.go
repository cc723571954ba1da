package redis_admin

import (
	"context"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/rs/zerolog"
)

var _ service.RedisAdmin = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger zerolog.Logger
	svc    service.RedisAdmin
}

// LoggingMiddleware audits every call. Failures absorbed by the soft lane are
// logged here before the result is collapsed.
func LoggingMiddleware(svc service.RedisAdmin, logger zerolog.Logger) service.RedisAdmin {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) event(method string, begin time.Time, err error) *zerolog.Event {
	e := lm.logger.Info()
	if err != nil {
		e = lm.logger.Warn().Err(err).Str("kind", ierrors.KindOf(err).String())
	}

	return e.Str("method", method).
		Str("lane", Lanes[method].String()).
		Dur("took", time.Since(begin))
}

func (lm *loggingMiddleware) ServerInfo(ctx context.Context) []domain.ServerInfoEntry {
	if entries, ok := lm.ServerInfoResult(ctx).Get(); ok {
		return entries
	}
	return []domain.ServerInfoEntry{}
}

func (lm *loggingMiddleware) ServerInfoResult(ctx context.Context) (res domain.Result[[]domain.ServerInfoEntry]) {
	defer func(begin time.Time) {
		entries, _ := res.Get()
		lm.event(OpServerInfo, begin, res.Err()).
			Str("status", res.Status().String()).
			Int("entries", len(entries)).
			Msg("method server_info completed")
	}(time.Now())

	return lm.svc.ServerInfoResult(ctx)
}

func (lm *loggingMiddleware) MemoryUsage(ctx context.Context) (snapshot *domain.MetricSnapshot, err error) {
	defer func(begin time.Time) {
		lm.event(OpMemoryUsage, begin, err).Msg("method memory_usage completed")
	}(time.Now())

	return lm.svc.MemoryUsage(ctx)
}

func (lm *loggingMiddleware) KeyCount(ctx context.Context) (snapshot *domain.MetricSnapshot, err error) {
	defer func(begin time.Time) {
		lm.event(OpKeyCount, begin, err).Msg("method key_count completed")
	}(time.Now())

	return lm.svc.KeyCount(ctx)
}

func (lm *loggingMiddleware) FindKeys(ctx context.Context, pattern string) []string {
	if keys, ok := lm.FindKeysResult(ctx, pattern).Get(); ok {
		return keys
	}
	return []string{}
}

func (lm *loggingMiddleware) FindKeysResult(ctx context.Context, pattern string) (res domain.Result[[]string]) {
	defer func(begin time.Time) {
		keys, _ := res.Get()
		lm.event(OpFindKeys, begin, res.Err()).
			Str("pattern", pattern).
			Str("status", res.Status().String()).
			Int("keys", len(keys)).
			Msg("method find_keys completed")
	}(time.Now())

	return lm.svc.FindKeysResult(ctx, pattern)
}

func (lm *loggingMiddleware) Value(ctx context.Context, key string) (string, bool) {
	return lm.ValueResult(ctx, key).Get()
}

func (lm *loggingMiddleware) ValueResult(ctx context.Context, key string) (res domain.Result[string]) {
	defer func(begin time.Time) {
		lm.event(OpValue, begin, res.Err()).
			Str("key", key).
			Str("status", res.Status().String()).
			Msg("method value completed")
	}(time.Now())

	return lm.svc.ValueResult(ctx, key)
}

func (lm *loggingMiddleware) SetValue(ctx context.Context, key, value string) (ok bool, err error) {
	defer func(begin time.Time) {
		lm.event(OpSetValue, begin, err).
			Str("key", key).
			Int("size", len(value)).
			Bool("ok", ok).
			Msg("method set_value completed")
	}(time.Now())

	return lm.svc.SetValue(ctx, key, value)
}

func (lm *loggingMiddleware) DeleteKeys(ctx context.Context, keys ...string) (deleted int64, err error) {
	defer func(begin time.Time) {
		lm.event(OpDeleteKeys, begin, err).
			Strs("keys", keys).
			Int64("deleted", deleted).
			Msg("method delete_keys completed")
	}(time.Now())

	return lm.svc.DeleteKeys(ctx, keys...)
}

func (lm *loggingMiddleware) ExistsCount(ctx context.Context, keys ...string) (present int64, err error) {
	defer func(begin time.Time) {
		lm.event(OpExistsCount, begin, err).
			Strs("keys", keys).
			Int64("exists", present).
			Msg("method exists_count completed")
	}(time.Now())

	return lm.svc.ExistsCount(ctx, keys...)
}

func (lm *loggingMiddleware) RemainingTTL(ctx context.Context, key string) (ttl int64, err error) {
	defer func(begin time.Time) {
		lm.event(OpRemainingTTL, begin, err).
			Str("key", key).
			Int64("ttl", ttl).
			Msg("method remaining_ttl completed")
	}(time.Now())

	return lm.svc.RemainingTTL(ctx, key)
}

func (lm *loggingMiddleware) SetExpiry(ctx context.Context, key string, milliseconds int64) (applied int64, err error) {
	defer func(begin time.Time) {
		lm.event(OpSetExpiry, begin, err).
			Str("key", key).
			Int64("milliseconds", milliseconds).
			Int64("applied", applied).
			Msg("method set_expiry completed")
	}(time.Now())

	return lm.svc.SetExpiry(ctx, key, milliseconds)
}
