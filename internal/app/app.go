package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/accountabro/backend/internal/config"
	"github.com/accountabro/backend/internal/db"
	"github.com/accountabro/backend/internal/lease"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/service"
	"github.com/accountabro/backend/internal/storage"
	"github.com/accountabro/backend/internal/worker"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	Store            *repository.Store
	Redis            *redis.Client
	ProfileService   *service.ProfileService
	CategoryService  *service.CategoryService
	GoalService      *service.GoalService
	SafetyService    *service.SafetyService
	QueueService     *service.QueueService
	MatchingEngine   *service.MatchingEngine
	LifecycleService *service.LifecycleService
	LedgerService    *service.LedgerService
	ReportService    *service.ReportService
	Scheduler        *worker.Scheduler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{Cfg: cfg, DB: database}

	// Matching lease
	var locker lease.Locker = lease.NewLocal()
	if cfg.RedisURL != "" {
		client, err := lease.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = client
		locker = lease.NewRedis(client, cfg.MatchLeaseTTL)
		slog.Info("matching lease", "backend", "redis")
	}

	// Evidence archive
	archive, err := storage.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	store := repository.NewStore(database)
	clock := service.SystemClock

	a.Store = store
	a.ProfileService = service.NewProfileService(store.Profiles, clock)
	a.CategoryService = service.NewCategoryService(store.Categories, clock)
	a.GoalService = service.NewGoalService(store, clock)
	a.SafetyService = service.NewSafetyService(store, clock)
	a.QueueService = service.NewQueueService(store, clock)
	a.MatchingEngine = service.NewMatchingEngine(store, a.QueueService, a.SafetyService, locker, clock, cfg.MatchBatchSize)
	a.LifecycleService = service.NewLifecycleService(store, clock, cfg.MatchMaxGroupSize)
	a.LedgerService = service.NewLedgerService(store, clock)
	a.ReportService = service.NewReportService(store, archive, clock)

	// Background matching
	a.Scheduler = worker.NewScheduler(a.MatchingEngine, a.CategoryService, cfg.MatchInterval, cfg.MatchParallelism)
	if cfg.MatchOnEnqueue {
		a.QueueService.SetNotifier(a.Scheduler.Notify)
	}

	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, db.Close(a.DB))
	}
	return errors.Join(errs...)
}
