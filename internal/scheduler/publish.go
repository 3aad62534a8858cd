// Package scheduler re-runs the publish job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/superbook/internal/logging"
)

// Job is one publish run. Its error is logged; the schedule keeps going.
type Job func(ctx context.Context) error

// PublishScheduler runs a Job periodically. A tick that fires while the
// previous run is still going is skipped.
type PublishScheduler struct {
	job Job

	cron       *cron.Cron
	entryID    cron.EntryID
	schedule   string
	mu         sync.RWMutex
	isRunning  bool
	publishing bool
	runCtx     context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

func NewPublishScheduler(job Job) *PublishScheduler {
	return &PublishScheduler{
		job:  job,
		cron: cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the job. Jobs receive a context that is cancelled when ctx
// is done or Stop is called.
func (s *PublishScheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runPublish()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule publish job: %w", err)
	}
	s.entryID = entryID
	s.schedule = schedule

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(schedule, time.Now())
	logging.Info().
		Str("schedule", schedule).
		Str("description", Describe(schedule)).
		Time("next_run", next).
		Msg("publish scheduler started")

	runCtx := s.runCtx
	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron and waits for a running job to finish.
func (s *PublishScheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.isRunning
	cancel := s.cancelFunc
	if wasRunning {
		s.isRunning = false
		s.cron.Remove(s.entryID)
		s.cancelFunc = nil
	}
	s.mu.Unlock()

	if wasRunning {
		stopped := s.cron.Stop()
		<-stopped.Done()
		cancel()
	}
	s.wg.Wait()

	if wasRunning {
		logging.Info().Msg("publish scheduler stopped")
	}
}

// RunNow triggers an immediate publish in the background
func (s *PublishScheduler) RunNow() {
	go s.runPublish()
}

// IsRunning returns whether the scheduler is active
func (s *PublishScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsPublishing returns whether a job is in progress.
func (s *PublishScheduler) IsPublishing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publishing
}

// NextRunTime returns when the next publish will occur
func (s *PublishScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *PublishScheduler) runPublish() {
	s.mu.Lock()
	if s.publishing {
		s.mu.Unlock()
		logging.Warn().Msg("publish skipped: previous run still in progress")
		return
	}
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.publishing = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.publishing = false
		s.mu.Unlock()
		s.wg.Done()
	}()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		logging.Error().Err(err).Dur("took", time.Since(start)).Msg("scheduled publish failed")
		return
	}
	logging.Info().Dur("took", time.Since(start)).Msg("scheduled publish finished")
}
