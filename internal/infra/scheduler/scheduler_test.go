//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"club-bridge/internal/domain/model"
)

type countingJob struct {
	name     string
	schedule string
	runs     int32
	block    chan struct{}
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) Refresh(context.Context) (*model.Horoscope, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &model.Horoscope{Text: "ok"}, nil
}

func newTestScheduler() *Scheduler {
	logger := zerolog.Nop()
	return NewScheduler(time.Second, &logger)
}

func TestScheduler(t *testing.T) {
	t.Run("rejects duplicate job names", func(t *testing.T) {
		s := newTestScheduler()
		if err := s.Register(&countingJob{name: "a", schedule: "@hourly"}); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := s.Register(&countingJob{name: "a", schedule: "@hourly"}); err == nil {
			t.Error("expected duplicate name error")
		}
	})

	t.Run("rejects invalid schedules on start", func(t *testing.T) {
		s := newTestScheduler()
		_ = s.Register(&countingJob{name: "bad", schedule: "not a cron"})
		if err := s.Start(context.Background()); err == nil {
			t.Error("expected schedule error")
		}
	})

	t.Run("start and stop are idempotent", func(t *testing.T) {
		s := newTestScheduler()
		_ = s.Register(&countingJob{name: "a", schedule: "@hourly"})
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("second Start: %v", err)
		}
		s.Stop()
		s.Stop()
	})

	t.Run("overlapping runs skip the tick", func(t *testing.T) {
		s := newTestScheduler()
		job := &countingJob{name: "slow", schedule: "@hourly", block: make(chan struct{})}
		_ = s.Register(job)

		done := make(chan struct{})
		go func() {
			s.runJob(context.Background(), job)
			close(done)
		}()
		for atomic.LoadInt32(&job.runs) == 0 {
			time.Sleep(time.Millisecond)
		}
		s.runJob(context.Background(), job)
		close(job.block)
		<-done

		if got := atomic.LoadInt32(&job.runs); got != 1 {
			t.Errorf("expected a single run, got %d", got)
		}
	})
}

func TestHoroscopeJob(t *testing.T) {
	ok := &stubRefresher{}
	job := NewHoroscopeJob(ok, "")
	if job.Schedule() != "0 * * * *" {
		t.Errorf("unexpected default schedule %q", job.Schedule())
	}
	if err := job.Run(context.Background()); err != nil || ok.calls != 1 {
		t.Errorf("Run: calls=%d err=%v", ok.calls, err)
	}

	failing := &stubRefresher{err: errors.New("upstream down")}
	if err := NewHoroscopeJob(failing, "@daily").Run(context.Background()); err == nil {
		t.Error("expected refresh error to surface")
	}
}
