// Package scheduler runs the source sync on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule matches the original scraping cycle of one pass every
// three days.
const DefaultSchedule = "@every 72h"

// SyncFunc is called on every tick.
type SyncFunc func(ctx context.Context) error

// Scheduler wraps a single cron entry around a sync function.
type Scheduler struct {
	cron    *cron.Cron
	syncFn  SyncFunc
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

// New creates a scheduler. The sync function runs on the given cron
// expression; pass DefaultSchedule for the standard cadence.
func New(schedule string, syncFn SyncFunc) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(),
		syncFn: syncFn,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins firing on schedule. The first run happens after one full
// interval; call RunNow for an immediate pass.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler: started")
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("scheduler: stopped")
}

// RunNow triggers a sync pass outside the schedule.
func (s *Scheduler) RunNow() error {
	s.run()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastRun reports the time and outcome of the most recent pass. The zero
// time means no pass has run yet.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Printf("scheduler: previous sync still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	err := s.syncFn(s.ctx)
	if err != nil {
		log.Printf("scheduler: sync failed: %v", err)
	}

	s.mu.Lock()
	s.running = false
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()
}
