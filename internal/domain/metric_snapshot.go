package domain

import (
	"encoding/json"
	"time"
)

const (
	MetricMemory = "memory"
	MetricDBSize = "dbsize"

	createTimeKey = "create_time"
)

// MetricSnapshot is a single named metric captured at CreateTime.
type MetricSnapshot struct {
	Name       string
	Value      int64
	CreateTime time.Time
}

func NewMetricSnapshot(name string, value int64, now time.Time) *MetricSnapshot {
	return &MetricSnapshot{
		Name:       name,
		Value:      value,
		CreateTime: now,
	}
}

// Map renders the snapshot as {"create_time": <ms since epoch>, <name>: <value>}.
func (s *MetricSnapshot) Map() map[string]int64 {
	return map[string]int64{
		createTimeKey: s.CreateTime.UnixMilli(),
		s.Name:        s.Value,
	}
}

func (s *MetricSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
