package service

import (
	"context"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
)

type Snapshots interface {
	Start()
	Stop() error
	// Capture takes one memory and one dbsize snapshot and stores them.
	Capture(ctx context.Context) error
	History(ctx context.Context, name string, limit int64) ([]*domain.MetricSnapshot, error)
}
