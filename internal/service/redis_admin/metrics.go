package redis_admin

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var _ service.RedisAdmin = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     service.RedisAdmin
}

// MakeMetrics registers the request counter and latency summary with the default registry.
func MakeMetrics(namespace, subsystem string) (*kitprometheus.Counter, *kitprometheus.Summary) {
	counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_microseconds",
		Help:      "Total duration of requests in microseconds.",
	}, []string{"method"})

	return counter, latency
}

// MetricsMiddleware instruments the facade by tracking request count and latency.
func MetricsMiddleware(svc service.RedisAdmin, counter metrics.Counter, latency metrics.Histogram) service.RedisAdmin {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (ms *metricsMiddleware) observe(method string, begin time.Time) {
	ms.counter.With("method", method).Add(1)
	ms.latency.With("method", method).Observe(float64(time.Since(begin).Microseconds()))
}

func (ms *metricsMiddleware) ServerInfo(ctx context.Context) []domain.ServerInfoEntry {
	defer ms.observe(OpServerInfo, time.Now())
	return ms.svc.ServerInfo(ctx)
}

func (ms *metricsMiddleware) ServerInfoResult(ctx context.Context) domain.Result[[]domain.ServerInfoEntry] {
	defer ms.observe(OpServerInfo, time.Now())
	return ms.svc.ServerInfoResult(ctx)
}

func (ms *metricsMiddleware) MemoryUsage(ctx context.Context) (*domain.MetricSnapshot, error) {
	defer ms.observe(OpMemoryUsage, time.Now())
	return ms.svc.MemoryUsage(ctx)
}

func (ms *metricsMiddleware) KeyCount(ctx context.Context) (*domain.MetricSnapshot, error) {
	defer ms.observe(OpKeyCount, time.Now())
	return ms.svc.KeyCount(ctx)
}

func (ms *metricsMiddleware) FindKeys(ctx context.Context, pattern string) []string {
	defer ms.observe(OpFindKeys, time.Now())
	return ms.svc.FindKeys(ctx, pattern)
}

func (ms *metricsMiddleware) FindKeysResult(ctx context.Context, pattern string) domain.Result[[]string] {
	defer ms.observe(OpFindKeys, time.Now())
	return ms.svc.FindKeysResult(ctx, pattern)
}

func (ms *metricsMiddleware) Value(ctx context.Context, key string) (string, bool) {
	defer ms.observe(OpValue, time.Now())
	return ms.svc.Value(ctx, key)
}

func (ms *metricsMiddleware) ValueResult(ctx context.Context, key string) domain.Result[string] {
	defer ms.observe(OpValue, time.Now())
	return ms.svc.ValueResult(ctx, key)
}

func (ms *metricsMiddleware) SetValue(ctx context.Context, key, value string) (bool, error) {
	defer ms.observe(OpSetValue, time.Now())
	return ms.svc.SetValue(ctx, key, value)
}

func (ms *metricsMiddleware) DeleteKeys(ctx context.Context, keys ...string) (int64, error) {
	defer ms.observe(OpDeleteKeys, time.Now())
	return ms.svc.DeleteKeys(ctx, keys...)
}

func (ms *metricsMiddleware) ExistsCount(ctx context.Context, keys ...string) (int64, error) {
	defer ms.observe(OpExistsCount, time.Now())
	return ms.svc.ExistsCount(ctx, keys...)
}

func (ms *metricsMiddleware) RemainingTTL(ctx context.Context, key string) (int64, error) {
	defer ms.observe(OpRemainingTTL, time.Now())
	return ms.svc.RemainingTTL(ctx, key)
}

func (ms *metricsMiddleware) SetExpiry(ctx context.Context, key string, milliseconds int64) (int64, error) {
	defer ms.observe(OpSetExpiry, time.Now())
	return ms.svc.SetExpiry(ctx, key, milliseconds)
}
