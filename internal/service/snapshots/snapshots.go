package snapshots

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/repository"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 1000
)

var _ service.Snapshots = (*svc)(nil)

type svc struct {
	redisAdminSvc       service.RedisAdmin
	metricSnapshotsRepo repository.MetricSnapshots
	cfg                 config.Snapshots
	ctx                 context.Context
	stopFunc            func()
	started             atomic.Bool
	done                chan struct{}
}

func NewService(
	redisAdminSvc service.RedisAdmin,
	metricSnapshotsRepo repository.MetricSnapshots,
	cfg config.Snapshots,
) *svc {
	ctx, cancel := context.WithCancel(context.Background())
	return &svc{
		redisAdminSvc:       redisAdminSvc,
		metricSnapshotsRepo: metricSnapshotsRepo,
		cfg:                 cfg,
		ctx:                 ctx,
		stopFunc:            cancel,
		done:                make(chan struct{}),
	}
}

// Start blocks until Stop is called.
func (s *svc) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	defer close(s.done)

	if s.ctx.Err() != nil {
		return
	}

	log.Info().Msgf("start snapshots recorder with delay %s", s.cfg.Delay)
	for {
		select {
		case <-time.After(s.cfg.Delay):
			if err := s.Capture(s.ctx); err != nil {
				log.Error().Msgf("snapshots.Capture: %v", err.Error())
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Capture does not stop at the first failure: a dbsize snapshot is still
// stored when the memory one could not be taken.
func (s *svc) Capture(ctx context.Context) error {
	var (
		snapshots = make([]*domain.MetricSnapshot, 0, 2)
		errs      []error
	)

	memory, err := s.redisAdminSvc.MemoryUsage(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("redisAdminSvc.MemoryUsage: %w", err))
	} else {
		snapshots = append(snapshots, memory)
	}

	dbSize, err := s.redisAdminSvc.KeyCount(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("redisAdminSvc.KeyCount: %w", err))
	} else {
		snapshots = append(snapshots, dbSize)
	}

	if err = s.metricSnapshotsRepo.Save(ctx, snapshots...); err != nil {
		errs = append(errs, fmt.Errorf("metricSnapshotsRepo.Save: %w", err))
	}

	return errors.Join(errs...)
}

func (s *svc) History(ctx context.Context, name string, limit int64) ([]*domain.MetricSnapshot, error) {
	if name != domain.MetricMemory && name != domain.MetricDBSize {
		return nil, fmt.Errorf("%w: unknown metric %q", ierrors.ErrBadRequest, name)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	snapshots, err := s.metricSnapshotsRepo.List(ctx, name, limit)
	if err != nil {
		return nil, fmt.Errorf("metricSnapshotsRepo.List: %w", err)
	}

	return snapshots, nil
}

// Stop cancels the recorder even when Start has not run yet, a later Start then returns at once.
func (s *svc) Stop() error {
	s.stopFunc()
	if !s.started.Load() {
		return ierrors.ErrServiceNotStarted
	}

	<-s.done
	return nil
}
