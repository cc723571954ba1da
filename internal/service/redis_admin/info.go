package redis_admin

import (
	"strconv"
	"strings"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
)

const (
	infoSectionMemory = "memory"
	infoUsedMemory    = "used_memory"
)

// parseInfo turns an INFO reply into entries in reporting order.
// Section headers and blank lines are skipped.
func parseInfo(raw string) []domain.ServerInfoEntry {
	entries := make([]domain.ServerInfoEntry, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		entries = append(entries, domain.ServerInfoEntry{
			Key:   key,
			Value: value,
		})
	}

	return entries
}

func usedMemory(raw string) (int64, error) {
	for _, entry := range parseInfo(raw) {
		if entry.Key != infoUsedMemory {
			continue
		}

		bytes, err := strconv.ParseInt(entry.Value, 10, 64)
		if err != nil || bytes < 0 {
			return 0, ierrors.Decode("%s is not a byte count: %q", infoUsedMemory, entry.Value)
		}
		return bytes, nil
	}

	return 0, ierrors.Decode("%s is missing from info reply", infoUsedMemory)
}
