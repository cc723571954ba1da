package redis_admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/ilyadubrovsky/redis-admin/internal/database"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/redis/go-redis/v9"
)

var _ service.RedisAdmin = (*svc)(nil)

type svc struct {
	redis database.Redis
	now   func() time.Time
}

func NewService(redis database.Redis) *svc {
	return &svc{
		redis: redis,
		now:   time.Now,
	}
}

// withConn scopes one connection to fn and releases it on every path.
func (s *svc) withConn(ctx context.Context, fn func(conn database.RedisConn) error) error {
	conn, err := s.redis.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("redis.Acquire: %w", ierrors.Classify(err))
	}
	defer conn.Close()

	return fn(conn)
}

func (s *svc) ServerInfo(ctx context.Context) []domain.ServerInfoEntry {
	entries, ok := s.ServerInfoResult(ctx).Get()
	if !ok {
		return []domain.ServerInfoEntry{}
	}
	return entries
}

func (s *svc) ServerInfoResult(ctx context.Context) domain.Result[[]domain.ServerInfoEntry] {
	var entries []domain.ServerInfoEntry
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		raw, err := conn.Info(ctx).Result()
		if err != nil {
			return fmt.Errorf("conn.Info: %w", ierrors.Classify(err))
		}
		entries = parseInfo(raw)
		return nil
	})
	if err != nil {
		return domain.Failed[[]domain.ServerInfoEntry](err)
	}
	if len(entries) == 0 {
		return domain.NotFound[[]domain.ServerInfoEntry]()
	}

	return domain.Found(entries)
}

func (s *svc) MemoryUsage(ctx context.Context) (*domain.MetricSnapshot, error) {
	var snapshot *domain.MetricSnapshot
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		raw, err := conn.Info(ctx, infoSectionMemory).Result()
		if err != nil {
			return fmt.Errorf("conn.Info(%s): %w", infoSectionMemory, ierrors.Classify(err))
		}

		usedMemory, err := usedMemory(raw)
		if err != nil {
			return fmt.Errorf("usedMemory: %w", err)
		}

		snapshot = domain.NewMetricSnapshot(domain.MetricMemory, usedMemory, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *svc) KeyCount(ctx context.Context) (*domain.MetricSnapshot, error) {
	var snapshot *domain.MetricSnapshot
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		size, err := conn.DBSize(ctx).Result()
		if err != nil {
			return fmt.Errorf("conn.DBSize: %w", ierrors.Classify(err))
		}

		snapshot = domain.NewMetricSnapshot(domain.MetricDBSize, size, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *svc) FindKeys(ctx context.Context, pattern string) []string {
	keys, ok := s.FindKeysResult(ctx, pattern).Get()
	if !ok {
		return []string{}
	}
	return keys
}

// FindKeysResult passes pattern to KEYS verbatim. The keys come back sorted.
func (s *svc) FindKeysResult(ctx context.Context, pattern string) domain.Result[[]string] {
	var keys []string
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		found, err := conn.Keys(ctx, pattern).Result()
		if err != nil {
			return fmt.Errorf("conn.Keys: %w", ierrors.Classify(err))
		}
		keys = uniqueSorted(found)
		return nil
	})
	if err != nil {
		return domain.Failed[[]string](err)
	}
	if len(keys) == 0 {
		return domain.NotFound[[]string]()
	}

	return domain.Found(keys)
}

func (s *svc) Value(ctx context.Context, key string) (string, bool) {
	return s.ValueResult(ctx, key).Get()
}

// ValueResult is NotFound for a missing key and Failed with ErrDecode when
// the stored bytes are not valid UTF-8.
func (s *svc) ValueResult(ctx context.Context, key string) domain.Result[string] {
	var (
		value []byte
		found bool
	)
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		raw, err := conn.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("conn.Get: %w", ierrors.Classify(err))
		}
		value, found = raw, true
		return nil
	})
	if err != nil {
		return domain.Failed[string](err)
	}
	if !found {
		return domain.NotFound[string]()
	}
	if !utf8.Valid(value) {
		return domain.Failed[string](ierrors.Decode("value of %q is not valid utf-8", key))
	}

	return domain.Found(string(value))
}

// SetValue overwrites key without expiry and reports whether the store accepted it.
func (s *svc) SetValue(ctx context.Context, key, value string) (bool, error) {
	var ok bool
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		status, err := conn.Set(ctx, key, []byte(value), 0).Result()
		if err != nil {
			return fmt.Errorf("conn.Set: %w", ierrors.Classify(err))
		}
		ok = status == "OK"
		return nil
	})
	if err != nil {
		return false, err
	}

	return ok, nil
}

// DeleteKeys issues one DEL per key and sums the results. On failure it stops
// and returns the count reached so far along with the error; deletions already
// applied are kept.
func (s *svc) DeleteKeys(ctx context.Context, keys ...string) (int64, error) {
	var deleted int64
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		for _, key := range keys {
			n, err := conn.Del(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("conn.Del(%s): %w", key, ierrors.Classify(err))
			}
			deleted += n
		}
		return nil
	})

	return deleted, err
}

// ExistsCount issues one EXISTS per key and counts the present ones. Failure
// handling matches DeleteKeys.
func (s *svc) ExistsCount(ctx context.Context, keys ...string) (int64, error) {
	var present int64
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		for _, key := range keys {
			n, err := conn.Exists(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("conn.Exists(%s): %w", key, ierrors.Classify(err))
			}
			if n > 0 {
				present++
			}
		}
		return nil
	})

	return present, err
}

// RemainingTTL returns milliseconds left, or domain.TTLNoExpiry / domain.TTLKeyAbsent as the store reports them.
func (s *svc) RemainingTTL(ctx context.Context, key string) (int64, error) {
	var ttl int64
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		d, err := conn.PTTL(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("conn.PTTL: %w", ierrors.Classify(err))
		}
		ttl = pttlMillis(d)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return ttl, nil
}

// maxExpiryMillis is the largest expiry that still fits a time.Duration.
const maxExpiryMillis = math.MaxInt64 / int64(time.Millisecond)

// SetExpiry returns 1 when the expiry was applied and 0 otherwise.
// An expiry that does not fit a time.Duration is rejected before any command is sent,
// it would wrap around to a negative PEXPIRE and delete the key.
func (s *svc) SetExpiry(ctx context.Context, key string, milliseconds int64) (int64, error) {
	if milliseconds > maxExpiryMillis || milliseconds < -maxExpiryMillis {
		return 0, fmt.Errorf("%w: expiry %d ms is out of range", ierrors.ErrBadRequest, milliseconds)
	}

	var applied int64
	err := s.withConn(ctx, func(conn database.RedisConn) error {
		ok, err := conn.PExpire(ctx, key, time.Duration(milliseconds)*time.Millisecond).Result()
		if err != nil {
			return fmt.Errorf("conn.PExpire: %w", ierrors.Classify(err))
		}
		if ok {
			applied = 1
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return applied, nil
}

// pttlMillis undoes the client side scaling. Sentinels (-1, -2) are not scaled by the client.
func pttlMillis(d time.Duration) int64 {
	if d < 0 {
		return int64(d)
	}
	return d.Milliseconds()
}

func uniqueSorted(keys []string) []string {
	if len(keys) == 0 {
		return keys
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	unique := sorted[:1]
	for _, k := range sorted[1:] {
		if k != unique[len(unique)-1] {
			unique = append(unique, k)
		}
	}
	return unique
}
