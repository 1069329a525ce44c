package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wastewatch/foodwaste-backend/config"
	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/events"
	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
	"github.com/wastewatch/foodwaste-backend/internal/projects/repository"
	"github.com/wastewatch/foodwaste-backend/internal/projects/service"
	"github.com/wastewatch/foodwaste-backend/internal/storage/postgres"
)

// Runtime holds the connections and services shared by the api and worker.
type Runtime struct {
	DB        *pgxpool.Pool
	SQL       *sql.DB
	Redis     *redis.Client
	Lifecycle *service.LifecycleService
	Sweeper   *service.Sweeper
}

// BuildRuntime connects to the configured backends. Without DB_DSN projects
// live in memory; without REDIS_ADDR events are dropped and the sweep runs
// unlocked.
func BuildRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	service.SetLogLevel(cfg.App.LogLevel)
	rt := &Runtime{}

	var (
		store         domain.ProjectStore
		registrations domain.RegistrationDays
	)
	if cfg.Database.DSN != "" {
		pool, err := OpenDB(ctx, DBOptions{DSN: cfg.Database.DSN, MaxConns: int32(cfg.Database.MaxConns)})
		if err != nil {
			return nil, err
		}
		rt.DB = pool

		pg := repository.NewPostgresProjectStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		store = pg

		sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("registrations db: %w", err)
		}
		rt.SQL = sqlDB
		registrations = repository.NewRegistrationRepository(sqlDB)
	} else {
		log.Println("[warn] DB_DSN not set, keeping projects in memory")
		store = repository.NewMemoryProjectStore()
		registrations = repository.NewStaticRegistrationDays()
	}

	rdb, err := OpenRedis(ctx, RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Redis = rdb

	var publisher events.Publisher = events.Nop{}
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb)
	}

	rt.Lifecycle = service.NewLifecycleService(store, registrations, lifecycle.SystemClock{}, publisher)
	rt.Sweeper = service.NewSweeper(rt.Lifecycle, rdb, service.SweepConfig{
		Schedule:       cfg.Sweep.Schedule,
		PageSize:       cfg.Sweep.PageSize,
		PagesPerSecond: cfg.Sweep.PagesPerSecond,
		LockTTL:        cfg.Sweep.LockTTL,
	})
	return rt, nil
}

func (rt *Runtime) Close() {
	if rt.Sweeper != nil {
		rt.Sweeper.Stop()
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	if rt.SQL != nil {
		_ = rt.SQL.Close()
	}
	if rt.DB != nil {
		rt.DB.Close()
	}
}
