package usecase

import (
	"time"

	"club-bridge/internal/domain/model"
)

const (
	dailySpan      = 24 * time.Hour
	catchUpSpan    = 72 * time.Hour
	weeklySpan     = 8 * 24 * time.Hour
	catchUpWeekday = time.Tuesday
)

// DigestWindow returns the time range a digest of the given kind covers when
// generated at now. Dailies are not sent on Mondays and weekends, so the
// Tuesday issue reaches back three days. The weekly span is 8 days to catch
// members who joined right at the boundary.
func DigestWindow(now time.Time, kind model.DigestKind) model.Window {
	end := now.UTC()
	switch kind {
	case model.DigestKindWeekly:
		return model.Window{Start: end.Add(-weeklySpan), End: end}
	default:
		span := dailySpan
		if end.Weekday() == catchUpWeekday {
			span = catchUpSpan
		}
		return model.Window{Start: end.Add(-span), End: end}
	}
}

// IssueNumber counts whole weeks since launch. Zero when launch is unset or in the future.
func IssueNumber(now, launch time.Time) int {
	if launch.IsZero() || now.Before(launch) {
		return 0
	}
	days := int(now.Sub(launch).Hours()) / 24
	return days / 7
}
