package service

import (
	"context"
	"time"

	"spec11/internal/services/spec11/domain"
)

// BaselineResolver finds the snapshot to subtract on the daily path
type BaselineResolver struct {
	Store          domain.SnapshotStore
	LookbackMonths int
}

// NewBaselineResolver builds a resolver with a lookback of at least one month
func NewBaselineResolver(store domain.SnapshotStore, months int) *BaselineResolver {
	if store == nil {
		panic("spec11.BaselineResolver requires a non nil SnapshotStore")
	}
	if months <= 0 {
		months = 1
	}
	return &BaselineResolver{Store: store, LookbackMonths: months}
}

// WindowStart is the earliest date that may serve as a baseline for date
func (b *BaselineResolver) WindowStart(date time.Time) time.Time {
	return minusMonths(domain.Day(date), b.LookbackMonths)
}

// minusMonths steps back n calendar months, clamping the day to the end of
// the target month (03-31 minus one month is 02-29 in a leap year)
func minusMonths(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}

// Find returns the nearest strictly earlier date with data inside the window.
// ok=false with a nil error is the valid "no baseline" outcome
func (b *BaselineResolver) Find(ctx context.Context, date time.Time) (time.Time, bool, error) {
	date = domain.Day(date)
	prev, ok, err := b.Store.PreviousDateWithData(ctx, date, b.WindowStart(date))
	if err != nil {
		return time.Time{}, false, domain.Fail(domain.KindFetchFailure, "find baseline", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	prev = domain.Day(prev)
	if !prev.Before(date) || prev.Before(b.WindowStart(date)) {
		// store returned something outside the contract; treat as no baseline
		return time.Time{}, false, nil
	}
	return prev, true, nil
}
