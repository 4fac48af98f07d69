package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/perfindex/internal/perfindex"
	"github.com/2beens/perfindex/internal/telemetry/tracing"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=scheduler_mocks_test.go -package=scheduler_test

// ActiveWindowDays is how far back a workout makes a user part of the sweep.
const ActiveWindowDays = 30

type activeUsersLister interface {
	ListActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

type indexCalculator interface {
	CalculateIndex(ctx context.Context, userID string) *perfindex.IndexResult
}

// Scheduler periodically recalculates the index of every recently active user, so
// history keeps a daily entry even on days without new workouts.
type Scheduler struct {
	cron       *cron.Cron
	users      activeUsersLister
	calculator indexCalculator
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(users activeUsersLister, calculator indexCalculator) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(),
		users:      users,
		calculator: calculator,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Register schedules the sweep with a standard five field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweepTask); err != nil {
		return fmt.Errorf("register recalculation sweep [%s]: %w", spec, err)
	}
	log.Debugf("recalculation sweep scheduled: %s", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// Stop cancels a running sweep and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Println("scheduler stopped")
}

func (s *Scheduler) sweepTask() {
	count, err := s.RunSweep(s.ctx)
	if err != nil {
		log.Errorf("recalculation sweep: %s", err)
		return
	}
	log.Printf("recalculation sweep done, %d users", count)
}

// RunSweep recalculates the index of every user active in the last 30 days and
// returns how many were recalculated.
func (s *Scheduler) RunSweep(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "scheduler.sweep")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	since := s.now().UTC().AddDate(0, 0, -ActiveWindowDays)
	userIDs, err := s.users.ListActiveUserIDs(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", len(userIDs)))

	done := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return done, fmt.Errorf("sweep interrupted after %d users: %w", done, err)
		}
		s.calculator.CalculateIndex(ctx, userID)
		done++
	}
	return done, nil
}
