package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron expressions. A job whose previous
// tick is still running skips the new tick.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    []Job
	locks   map[string]*sync.Mutex
	timeout time.Duration
	logger  *zerolog.Logger

	cancel context.CancelFunc
}

// NewScheduler constructs a scheduler. Each run gets its own context bounded
// by timeout; timeout <= 0 defaults to 30s.
func NewScheduler(timeout time.Duration, logger *zerolog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	l := logger.With().Str("component", "Scheduler").Logger()
	return &Scheduler{
		locks:   make(map[string]*sync.Mutex),
		timeout: timeout,
		logger:  &l,
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.locks[j.Name()]; exists {
		return fmt.Errorf("scheduler: duplicate job name %q", j.Name())
	}
	s.locks[j.Name()] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start parses every schedule and begins running jobs in the background.
// Calling Start twice has no effect.
func (s *Scheduler) Start(parentCtx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(parentCtx)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC))

	for _, j := range s.jobs {
		job := j
		if _, err := c.AddFunc(job.Schedule(), func() { s.runJob(ctx, job) }); err != nil {
			cancel()
			return fmt.Errorf("scheduler: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron = c
	s.cancel = cancel
	c.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	lock := s.locks[job.Name()]
	if !lock.TryLock() {
		s.logger.Warn().Str("job", job.Name()).Msg("job still running, skipping tick")
		return
	}
	defer lock.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(runCtx); err != nil {
		s.logger.Error().Err(err).Str("job", job.Name()).Msg("job failed")
		return
	}
	s.logger.Debug().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job completed")
}

// Stop cancels in-flight runs and waits for them. It is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.cron = nil
	s.cancel = nil
	s.logger.Info().Msg("scheduler stopped")
}
