package mocks

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/database"
	"github.com/redis/go-redis/v9"
)

var _ database.Redis = (*RedisMock)(nil)

const defaultInfo = "# Server\r\nredis_version:7.2.0\r\nuptime_in_seconds:42\r\n\r\n" +
	"# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"

// RedisMock is an in-memory stand-in for the connection factory. Commands can
// be made to fail with Fail, optionally only from the n-th call on.
type RedisMock struct {
	mu       sync.Mutex
	data     map[string][]byte
	expireAt map[string]time.Time
	info     map[string]string

	acquireErr error
	failures   map[string]failure
	calls      map[string]int

	acquired int
	released int
}

type failure struct {
	err  error
	from int
}

func NewRedis() *RedisMock {
	return &RedisMock{
		data:     make(map[string][]byte),
		expireAt: make(map[string]time.Time),
		info: map[string]string{
			"":       defaultInfo,
			"memory": "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n",
		},
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
}

func (m *RedisMock) Seed(values map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.data[k] = []byte(v)
	}
}

func (m *RedisMock) SeedBytes(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
}

// SetInfo replaces the raw INFO reply for section ("" means no section).
func (m *RedisMock) SetInfo(section, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.info[section] = raw
}

func (m *RedisMock) FailAcquire(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquireErr = err
}

// Fail makes every call of command fail with err.
func (m *RedisMock) Fail(command string, err error) {
	m.FailFrom(command, 1, err)
}

// FailFrom makes command fail with err starting with its n-th call.
func (m *RedisMock) FailFrom(command string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[command] = failure{err: err, from: n}
}

func (m *RedisMock) Calls(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[command]
}

// Leases returns how many connections were acquired and released.
func (m *RedisMock) Leases() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.acquired, m.released
}

func (m *RedisMock) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.alive(key)
}

func (m *RedisMock) Acquire(ctx context.Context) (database.RedisConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.acquired++

	return &connMock{redis: m}, nil
}

// call registers a command invocation, the caller must hold mu.
func (m *RedisMock) call(command string) error {
	m.calls[command]++
	f, ok := m.failures[command]
	if ok && m.calls[command] >= f.from {
		return f.err
	}
	return nil
}

// alive reports whether key exists, dropping it when expired. The caller must hold mu.
func (m *RedisMock) alive(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	if at, ok := m.expireAt[key]; ok && !time.Now().Before(at) {
		delete(m.data, key)
		delete(m.expireAt, key)
		return false
	}
	return true
}

var _ database.RedisConn = (*connMock)(nil)

type connMock struct {
	redis  *RedisMock
	closed bool
}

func (c *connMock) Info(_ context.Context, sections ...string) *redis.StringCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("info"); err != nil {
		return redis.NewStringResult("", err)
	}
	section := ""
	if len(sections) > 0 {
		section = sections[0]
	}
	return redis.NewStringResult(m.info[section], nil)
}

func (c *connMock) DBSize(_ context.Context) *redis.IntCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("dbsize"); err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for k := range m.data {
		if m.alive(k) {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *connMock) Keys(_ context.Context, pattern string) *redis.StringSliceCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("keys"); err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	keys := make([]string, 0)
	for k := range m.data {
		if !m.alive(k) {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return redis.NewStringSliceResult(keys, nil)
}

func (c *connMock) Get(_ context.Context, key string) *redis.StringCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("get"); err != nil {
		return redis.NewStringResult("", err)
	}
	if !m.alive(key) {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(m.data[key]), nil)
}

func (c *connMock) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("set"); err != nil {
		return redis.NewStatusResult("", err)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = append([]byte(nil), v...)
	case string:
		m.data[key] = []byte(v)
	}
	delete(m.expireAt, key)
	if expiration > 0 {
		m.expireAt[key] = time.Now().Add(expiration)
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *connMock) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("del"); err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, k := range keys {
		if m.alive(k) {
			delete(m.data, k)
			delete(m.expireAt, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *connMock) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("exists"); err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, k := range keys {
		if m.alive(k) {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *connMock) PTTL(_ context.Context, key string) *redis.DurationCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("pttl"); err != nil {
		return redis.NewDurationResult(0, err)
	}
	if !m.alive(key) {
		return redis.NewDurationResult(-2, nil)
	}
	at, ok := m.expireAt[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(time.Until(at).Truncate(time.Millisecond), nil)
}

func (c *connMock) PExpire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m := c.lock()
	defer m.mu.Unlock()

	if err := m.call("pexpire"); err != nil {
		return redis.NewBoolResult(false, err)
	}
	if !m.alive(key) {
		return redis.NewBoolResult(false, nil)
	}
	m.expireAt[key] = time.Now().Add(expiration)
	return redis.NewBoolResult(true, nil)
}

func (c *connMock) Close() error {
	m := c.lock()
	defer m.mu.Unlock()

	if !c.closed {
		c.closed = true
		m.released++
	}
	return nil
}

func (c *connMock) lock() *RedisMock {
	c.redis.mu.Lock()
	return c.redis
}
