package redis_admin

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ilyadubrovsky/redis-admin/internal/database/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	lines := make([]map[string]interface{}, 0)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggingMiddlewareLogsAbsorbedFailure(t *testing.T) {
	redis := mocks.NewRedis()
	redis.Fail("keys", errDial)

	var buf bytes.Buffer
	svc := LoggingMiddleware(NewService(redis), zerolog.New(&buf))

	keys := svc.FindKeys(context.Background(), "user:*")
	assert.NotNil(t, keys)
	assert.Empty(t, keys)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, OpFindKeys, lines[0]["method"])
	assert.Equal(t, "soft_degrade", lines[0]["lane"])
	assert.Equal(t, "connection", lines[0]["kind"])
	assert.Equal(t, "user:*", lines[0]["pattern"])
	assert.Equal(t, "failed", lines[0]["status"])
}

func TestLoggingMiddlewarePropagates(t *testing.T) {
	redis := mocks.NewRedis()
	redis.Seed(map[string]string{"a": "1", "b": "2"})

	var buf bytes.Buffer
	svc := LoggingMiddleware(NewService(redis), zerolog.New(&buf))

	deleted, err := svc.DeleteKeys(context.Background(), "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	redis.Fail("set", errDial)
	_, err = svc.SetValue(context.Background(), "k", "v")
	assert.Error(t, err)

	value, found := svc.Value(context.Background(), "b")
	assert.False(t, found)
	assert.Equal(t, "", value)

	lines := logLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, OpDeleteKeys, lines[0]["method"])
	assert.Equal(t, float64(2), lines[0]["deleted"])
	assert.Equal(t, []interface{}{"a", "b", "c"}, lines[0]["keys"])

	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, OpSetValue, lines[1]["method"])
	assert.Equal(t, "propagate", lines[1]["lane"])

	assert.Equal(t, "info", lines[2]["level"])
	assert.Equal(t, "not_found", lines[2]["status"])
}
