package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	httpapi "github.com/ilyadubrovsky/redis-admin/internal/api/http"
	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/ilyadubrovsky/redis-admin/internal/database/pg"
	redisdb "github.com/ilyadubrovsky/redis-admin/internal/database/redis"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/repository/metric_snapshots"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/ilyadubrovsky/redis-admin/internal/service/redis_admin"
	"github.com/ilyadubrovsky/redis-admin/internal/service/snapshots"
	"github.com/ilyadubrovsky/redis-admin/internal/service/telegram"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	metricsNamespace = "redis_admin"
	metricsSubsystem = "facade"
)

type App struct {
	cfg         *config.Config
	redisClient *redis.Client
	pgPool      *pgxpool.Pool
	httpServer  *http.Server
	// snapshotsSvc and telegramSvc stay nil when disabled by the configuration.
	snapshotsSvc service.Snapshots
	telegramSvc  service.Telegram
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	redisClient, err := redisdb.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redisdb.New: %w", err)
	}
	a.redisClient = redisClient

	var redisAdminSvc service.RedisAdmin
	redisAdminSvc = redis_admin.NewService(redisdb.NewConnFactory(redisClient))
	redisAdminSvc = redis_admin.LoggingMiddleware(
		redisAdminSvc,
		log.Logger.With().Str("component", "redis_admin").Logger(),
	)
	counter, latency := redis_admin.MakeMetrics(metricsNamespace, metricsSubsystem)
	redisAdminSvc = redis_admin.MetricsMiddleware(redisAdminSvc, counter, latency)

	if cfg.SnapshotsEnabled() {
		pgPool, err := pg.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("pg.New: %w", err)
		}
		a.pgPool = pgPool

		metricSnapshotsRepo := metric_snapshots.NewRepository(pgPool)
		a.snapshotsSvc = snapshots.NewService(redisAdminSvc, metricSnapshotsRepo, cfg.Snapshots)
	}

	if cfg.TelegramEnabled() {
		telegramSvc, err := telegram.NewService(redisAdminSvc, cfg.Telegram)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("telegram.NewService: %w", err)
		}
		a.telegramSvc = telegramSvc
	}

	a.httpServer = &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.MakeHandler(
			redisAdminSvc,
			a.snapshotsSvc,
			log.Logger.With().Str("component", "http").Logger(),
		),
	}

	return a, nil
}

// Run blocks until ctx is done or the http server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Msgf("http server listening on %s", a.cfg.HTTP.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
		return nil
	})

	if a.snapshotsSvc != nil {
		go a.snapshotsSvc.Start()
	}

	if a.telegramSvc != nil {
		log.Info().Msg("telegram bot launching")
		go a.telegramSvc.Start()
	}

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("httpServer.Shutdown: %w", err))
	}

	if a.telegramSvc != nil {
		a.telegramSvc.Stop()
	}

	if a.snapshotsSvc != nil {
		if err := a.snapshotsSvc.Stop(); err != nil && !errors.Is(err, ierrors.ErrServiceNotStarted) {
			errs = append(errs, fmt.Errorf("snapshotsSvc.Stop: %w", err))
		}
	}

	a.close()

	return errors.Join(errs...)
}

func (a *App) close() {
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Error().Msgf("redisClient.Close: %v", err)
		}
	}
}
