package redis_admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/database/mocks"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

type replyError string

func (e replyError) Error() string { return string(e) }

func (replyError) RedisError() {}

func newService(t *testing.T) (*svc, *mocks.RedisMock) {
	t.Helper()

	redis := mocks.NewRedis()
	s := NewService(redis)
	t.Cleanup(func() {
		acquired, released := redis.Leases()
		assert.Equal(t, acquired, released, "every acquired connection must be released")
	})

	return s, redis
}

func TestServerInfo(t *testing.T) {
	s, _ := newService(t)

	entries := s.ServerInfo(context.Background())

	assert.Equal(t, []domain.ServerInfoEntry{
		{Key: "redis_version", Value: "7.2.0"},
		{Key: "uptime_in_seconds", Value: "42"},
		{Key: "used_memory", Value: "1048576"},
		{Key: "used_memory_human", Value: "1.00M"},
	}, entries)
}

func TestServerInfoSoftDegrade(t *testing.T) {
	cases := []struct {
		desc  string
		setup func(m *mocks.RedisMock)
		kind  ierrors.Kind
	}{
		{
			desc:  "store unreachable on command",
			setup: func(m *mocks.RedisMock) { m.Fail("info", errDial) },
			kind:  ierrors.KindConnection,
		},
		{
			desc:  "store unreachable on acquire",
			setup: func(m *mocks.RedisMock) { m.FailAcquire(io.EOF) },
			kind:  ierrors.KindConnection,
		},
		{
			desc:  "command rejected",
			setup: func(m *mocks.RedisMock) { m.Fail("info", replyError("ERR unknown command")) },
			kind:  ierrors.KindCommand,
		},
	}

	for _, tc := range cases {
		s, redis := newService(t)
		tc.setup(redis)

		entries := s.ServerInfo(context.Background())
		assert.NotNil(t, entries, tc.desc)
		assert.Empty(t, entries, tc.desc)

		res := s.ServerInfoResult(context.Background())
		assert.Equal(t, domain.StatusFailed, res.Status(), tc.desc)
		assert.Equal(t, tc.kind, res.Kind(), tc.desc)
	}
}

func TestServerInfoEmptyReply(t *testing.T) {
	s, redis := newService(t)
	redis.SetInfo("", "")

	res := s.ServerInfoResult(context.Background())
	assert.Equal(t, domain.StatusNotFound, res.Status())
	assert.Empty(t, s.ServerInfo(context.Background()))
}

func TestMemoryUsage(t *testing.T) {
	s, _ := newService(t)
	now := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return now }

	snapshot, err := s.MemoryUsage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"create_time": 1700000000000,
		"memory":      1048576,
	}, snapshot.Map())
}

func TestMemoryUsageTimestampIsMonotonic(t *testing.T) {
	s, _ := newService(t)

	var last int64
	for i := 0; i < 5; i++ {
		snapshot, err := s.MemoryUsage(context.Background())
		require.NoError(t, err)

		created := snapshot.Map()["create_time"]
		assert.GreaterOrEqual(t, created, last)
		assert.GreaterOrEqual(t, snapshot.Value, int64(0))
		last = created
	}
}

func TestMemoryUsageFailures(t *testing.T) {
	cases := []struct {
		desc  string
		setup func(m *mocks.RedisMock)
		err   error
	}{
		{
			desc:  "transport failure propagates",
			setup: func(m *mocks.RedisMock) { m.Fail("info", errDial) },
			err:   ierrors.ErrConnection,
		},
		{
			desc:  "used_memory missing",
			setup: func(m *mocks.RedisMock) { m.SetInfo("memory", "# Memory\r\nused_memory_rss:1\r\n") },
			err:   ierrors.ErrDecode,
		},
		{
			desc:  "used_memory is not a number",
			setup: func(m *mocks.RedisMock) { m.SetInfo("memory", "used_memory:lots\r\n") },
			err:   ierrors.ErrDecode,
		},
		{
			desc:  "used_memory is negative",
			setup: func(m *mocks.RedisMock) { m.SetInfo("memory", "used_memory:-5\r\n") },
			err:   ierrors.ErrDecode,
		},
	}

	for _, tc := range cases {
		s, redis := newService(t)
		tc.setup(redis)

		snapshot, err := s.MemoryUsage(context.Background())
		assert.Nil(t, snapshot, tc.desc)
		assert.ErrorIs(t, err, tc.err, tc.desc)
	}
}

func TestKeyCount(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"a": "1", "b": "2", "c": "3"})
	now := time.UnixMilli(1700000000500)
	s.now = func() time.Time { return now }

	snapshot, err := s.KeyCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"create_time": 1700000000500, "dbsize": 3}, snapshot.Map())

	redis.Fail("dbsize", errDial)
	snapshot, err = s.KeyCount(context.Background())
	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ierrors.ErrConnection)
}

func TestFindKeys(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"user:1": "a", "user:2": "b", "session:1": "c"})

	cases := []struct {
		desc    string
		pattern string
		keys    []string
	}{
		{desc: "match all", pattern: "*", keys: []string{"session:1", "user:1", "user:2"}},
		{desc: "match prefix", pattern: "user:*", keys: []string{"user:1", "user:2"}},
		{desc: "single char wildcard", pattern: "user:?", keys: []string{"user:1", "user:2"}},
		{desc: "exact", pattern: "session:1", keys: []string{"session:1"}},
		{desc: "no match", pattern: "nope*", keys: []string{}},
	}

	for _, tc := range cases {
		keys := s.FindKeys(context.Background(), tc.pattern)
		assert.Equal(t, tc.keys, keys, tc.desc)
	}

	res := s.FindKeysResult(context.Background(), "nope*")
	assert.Equal(t, domain.StatusNotFound, res.Status())
}

func TestFindKeysSoftDegrade(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"x": "1"})
	redis.Fail("keys", errDial)

	keys := s.FindKeys(context.Background(), "*")
	assert.NotNil(t, keys)
	assert.Empty(t, keys)

	res := s.FindKeysResult(context.Background(), "*")
	assert.Equal(t, domain.StatusFailed, res.Status())
	assert.ErrorIs(t, res.Err(), ierrors.ErrConnection)
}

func TestValue(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"text": "привет", "empty": ""})
	redis.SeedBytes("binary", []byte{0xff, 0xfe, 0xfd})

	cases := []struct {
		desc   string
		key    string
		value  string
		found  bool
		status domain.Status
		err    error
	}{
		{desc: "utf-8 value", key: "text", value: "привет", found: true, status: domain.StatusFound},
		{desc: "empty value is present", key: "empty", value: "", found: true, status: domain.StatusFound},
		{desc: "missing key", key: "missing", found: false, status: domain.StatusNotFound},
		{desc: "invalid utf-8", key: "binary", found: false, status: domain.StatusFailed, err: ierrors.ErrDecode},
	}

	for _, tc := range cases {
		value, found := s.Value(context.Background(), tc.key)
		assert.Equal(t, tc.value, value, tc.desc)
		assert.Equal(t, tc.found, found, tc.desc)

		res := s.ValueResult(context.Background(), tc.key)
		assert.Equal(t, tc.status, res.Status(), tc.desc)
		if tc.err != nil {
			assert.ErrorIs(t, res.Err(), tc.err, tc.desc)
		}
	}
}

func TestValueSoftDegrade(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"k": "v"})
	redis.Fail("get", errDial)

	value, found := s.Value(context.Background(), "k")
	assert.False(t, found)
	assert.Equal(t, "", value)

	res := s.ValueResult(context.Background(), "k")
	assert.Equal(t, domain.StatusFailed, res.Status())
	assert.Equal(t, ierrors.KindConnection, res.Kind())
}

func TestSetValue(t *testing.T) {
	s, redis := newService(t)

	cases := []struct {
		key   string
		value string
	}{
		{key: "k", value: "v"},
		{key: "k", value: "overwritten"},
		{key: "unicode", value: "ключ 🔑"},
		{key: "empty", value: ""},
	}

	for _, tc := range cases {
		ok, err := s.SetValue(context.Background(), tc.key, tc.value)
		require.NoError(t, err)
		assert.True(t, ok)

		value, found := s.Value(context.Background(), tc.key)
		assert.True(t, found)
		assert.Equal(t, tc.value, value, fmt.Sprintf("round trip of %q", tc.key))
	}

	ttl, err := s.RemainingTTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, domain.TTLNoExpiry, ttl, "set must not attach an expiry")

	redis.Fail("set", errDial)
	ok, err := s.SetValue(context.Background(), "k", "v")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ierrors.ErrConnection)
}

func TestDeleteKeys(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"a": "1", "c": "3"})

	deleted, err := s.DeleteKeys(context.Background(), "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 3, redis.Calls("del"), "one DEL per key")

	present, err := s.ExistsCount(context.Background(), "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), present)

	deleted, err = s.DeleteKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestDeleteKeysAbortsOnFailure(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"a": "1", "b": "2", "c": "3"})
	redis.FailFrom("del", 2, errDial)

	deleted, err := s.DeleteKeys(context.Background(), "a", "b", "c")
	assert.ErrorIs(t, err, ierrors.ErrConnection)
	assert.Equal(t, int64(1), deleted, "count reached before the failure")
	assert.Equal(t, 2, redis.Calls("del"), "remaining keys are abandoned")

	assert.False(t, redis.Has("a"), "applied deletion stays applied")
	assert.True(t, redis.Has("b"))
	assert.True(t, redis.Has("c"))
}

func TestExistsCount(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"x": "1", "y": "2"})

	cases := []struct {
		desc  string
		keys  []string
		count int64
	}{
		{desc: "all present", keys: []string{"x", "y"}, count: 2},
		{desc: "some present", keys: []string{"x", "z"}, count: 1},
		{desc: "repeated key counts twice", keys: []string{"x", "x"}, count: 2},
		{desc: "none present", keys: []string{"z"}, count: 0},
		{desc: "no keys", keys: nil, count: 0},
	}

	for _, tc := range cases {
		count, err := s.ExistsCount(context.Background(), tc.keys...)
		require.NoError(t, err, tc.desc)
		assert.Equal(t, tc.count, count, tc.desc)
	}

	redis.FailFrom("exists", redis.Calls("exists")+2, errDial)
	count, err := s.ExistsCount(context.Background(), "x", "y")
	assert.ErrorIs(t, err, ierrors.ErrConnection)
	assert.Equal(t, int64(1), count)
}

func TestRemainingTTLAndSetExpiry(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"k": "v"})

	ttl, err := s.RemainingTTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, domain.TTLNoExpiry, ttl)

	ttl, err = s.RemainingTTL(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, domain.TTLKeyAbsent, ttl)

	applied, err := s.SetExpiry(context.Background(), "k", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)

	ttl, err = s.RemainingTTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, int64(0))
	assert.LessOrEqual(t, ttl, int64(5000))

	applied, err = s.SetExpiry(context.Background(), "missing", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), applied)

	redis.Fail("pttl", errDial)
	_, err = s.RemainingTTL(context.Background(), "k")
	assert.ErrorIs(t, err, ierrors.ErrConnection)

	applied, err = s.SetExpiry(context.Background(), "k", 10_000_000_000_000)
	assert.ErrorIs(t, err, ierrors.ErrBadRequest)
	assert.Equal(t, int64(0), applied)
	assert.True(t, redis.Has("k"), "an out of range expiry must not delete the key")

	_, err = s.SetExpiry(context.Background(), "k", -maxExpiryMillis-1)
	assert.ErrorIs(t, err, ierrors.ErrBadRequest)
	assert.True(t, redis.Has("k"))

	applied, err = s.SetExpiry(context.Background(), "k", maxExpiryMillis)
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)
	assert.True(t, redis.Has("k"))

	redis.Fail("pexpire", replyError("ERR invalid expire time"))
	_, err = s.SetExpiry(context.Background(), "k", 1)
	assert.ErrorIs(t, err, ierrors.ErrCommand)
}

func TestPttlMillis(t *testing.T) {
	assert.Equal(t, int64(-1), pttlMillis(time.Duration(-1)))
	assert.Equal(t, int64(-2), pttlMillis(time.Duration(-2)))
	assert.Equal(t, int64(1500), pttlMillis(1500*time.Millisecond))
	assert.Equal(t, int64(0), pttlMillis(0))
}

func TestScenario(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"x": "1", "y": "2"})
	ctx := context.Background()

	assert.Equal(t, []string{"x", "y"}, s.FindKeys(ctx, "*"))

	deleted, err := s.DeleteKeys(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	present, err := s.ExistsCount(ctx, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, int64(1), present)

	_, found := s.Value(ctx, "x")
	assert.False(t, found)

	value, found := s.Value(ctx, "y")
	assert.True(t, found)
	assert.Equal(t, "2", value)
}

func TestConcurrentCalls(t *testing.T) {
	s, redis := newService(t)
	redis.Seed(map[string]string{"shared": "v"})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			key := fmt.Sprintf("key:%d", i)
			_, _ = s.SetValue(ctx, key, "v")
			_, _ = s.Value(ctx, "shared")
			_ = s.FindKeys(ctx, "key:*")
			_, _ = s.ExistsCount(ctx, key, "shared")
			_, _ = s.DeleteKeys(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"shared"}, s.FindKeys(ctx, "*"))
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueSorted([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, uniqueSorted(nil))
}
