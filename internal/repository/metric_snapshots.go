package repository

import (
	"context"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
)

type MetricSnapshots interface {
	Save(ctx context.Context, snapshots ...*domain.MetricSnapshot) error
	// List returns the latest snapshots of name, newest first.
	List(ctx context.Context, name string, limit int64) ([]*domain.MetricSnapshot, error)
}
