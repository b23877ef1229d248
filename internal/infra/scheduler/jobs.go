package scheduler

import (
	"context"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/infra/metrics"
)

// HoroscopeRefresher overwrites the cached mood text.
type HoroscopeRefresher interface {
	Refresh(ctx context.Context) (*model.Horoscope, error)
}

// HoroscopeJob keeps the daily digest mood text warm.
type HoroscopeJob struct {
	refresher HoroscopeRefresher
	schedule  string
}

// NewHoroscopeJob defaults to refreshing at the top of every hour.
func NewHoroscopeJob(refresher HoroscopeRefresher, schedule string) *HoroscopeJob {
	if schedule == "" {
		schedule = "0 * * * *"
	}
	return &HoroscopeJob{refresher: refresher, schedule: schedule}
}

func (j *HoroscopeJob) Name() string     { return "horoscope_refresh" }
func (j *HoroscopeJob) Schedule() string { return j.schedule }

func (j *HoroscopeJob) Run(ctx context.Context) error {
	if _, err := j.refresher.Refresh(ctx); err != nil {
		metrics.IncHoroscopeRefresh("error")
		return err
	}
	metrics.IncHoroscopeRefresh("ok")
	return nil
}
