package dbo

import (
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
)

type MetricSnapshot struct {
	ID        int64
	Name      string
	Value     int64
	CreatedAt time.Time
}

func FromDomain(snapshot *domain.MetricSnapshot) *MetricSnapshot {
	return &MetricSnapshot{
		Name:      snapshot.Name,
		Value:     snapshot.Value,
		CreatedAt: snapshot.CreateTime.UTC(),
	}
}

func (s *MetricSnapshot) ToDomain() *domain.MetricSnapshot {
	return domain.NewMetricSnapshot(s.Name, s.Value, s.CreatedAt)
}
