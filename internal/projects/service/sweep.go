package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
)

const sweepLockKey = "projects:sweep:lock"

// SweepStatuses are the statuses an automatic rule can move on without a
// request-supplied trigger.
var SweepStatuses = []domain.Status{
	domain.StatusPendingStart,
	domain.StatusRunning,
	domain.StatusPendingFollowUp,
}

var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepConfig controls the periodic sweep.
type SweepConfig struct {
	Schedule       string // cron spec with seconds, e.g. "0 */15 * * * *"; empty disables
	PageSize       int
	PagesPerSecond float64
	LockTTL        time.Duration
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Scanned int
	Changed int
	Skipped bool // another instance held the lock
}

// Sweeper reads candidate projects through the lifecycle service on a
// schedule, so time-based transitions land even when nobody opens a project.
type Sweeper struct {
	svc      *LifecycleService
	redis    *redis.Client
	limiter  *rate.Limiter
	pageSize int
	lockTTL  time.Duration
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a new Sweeper. A nil redis client runs without the
// cross-instance lock.
func NewSweeper(svc *LifecycleService, client *redis.Client, cfg SweepConfig) *Sweeper {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	limit := rate.Inf
	if cfg.PagesPerSecond > 0 {
		limit = rate.Limit(cfg.PagesPerSecond)
	}
	return &Sweeper{
		svc:      svc,
		redis:    client,
		limiter:  rate.NewLimiter(limit, 1),
		pageSize: cfg.PageSize,
		lockTTL:  cfg.LockTTL,
		schedule: cfg.Schedule,
	}
}

// Start schedules the sweep. It is a no-op when no schedule is configured.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.schedule == "" {
		log.Println("[info] project sweep disabled (SWEEP_SCHEDULE empty)")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(s.schedule, func() {
		res, err := s.RunOnce(ctx)
		if err != nil {
			log.Printf("[error] operation=sweep error=%v", err)
			return
		}
		if res.Skipped {
			log.Println("[info] operation=sweep skipped, lock held by another instance")
			return
		}
		log.Printf("[info] operation=sweep scanned=%d changed=%d", res.Scanned, res.Changed)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron = c
	c.Start()
	log.Printf("[info] project sweep scheduled (%s)", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce sweeps every candidate project a single time.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	token := uuid.New().String()
	acquired, err := s.acquire(ctx, token)
	if err != nil {
		return SweepResult{}, err
	}
	if !acquired {
		return SweepResult{Skipped: true}, nil
	}
	defer s.release(token)

	access := lifecycle.Access{RequestID: "sweep-" + token}
	var res SweepResult
	after := ""
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return res, err
		}

		// Keyset paging: status changes made while sweeping, including
		// cascades to earlier pages, cannot shift later candidates.
		page, err := s.svc.store.Find(ctx, domain.Query{Statuses: SweepStatuses, Limit: s.pageSize, AfterID: after})
		if err != nil {
			return res, storeErr("sweep find", err)
		}
		out, err := s.svc.OnRead(ctx, page, access)
		if err != nil {
			return res, err
		}

		for i := range out {
			if out[i].Status != page[i].Status {
				res.Changed++
			}
		}
		res.Scanned += len(page)

		if len(page) < s.pageSize {
			return res, nil
		}
		after = page[len(page)-1].ID
	}
}

func (s *Sweeper) acquire(ctx context.Context, token string) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	ok, err := s.redis.SetNX(ctx, sweepLockKey, token, s.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	return ok, nil
}

func (s *Sweeper) release(token string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseLock.Run(ctx, s.redis, []string{sweepLockKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[warn] operation=sweep failed to release lock: %v", err)
	}
}
