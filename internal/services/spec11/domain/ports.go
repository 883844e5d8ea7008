// Package domain defines the spec11 publisher types and ports
package domain

import (
	"context"
	"time"
)

// PublisherPort is the trigger surface exposed by the module.
// The HTTP action and the one-shot CLI both call Publish once per invocation
type PublisherPort interface {
	Publish(ctx context.Context, jobID string, date time.Time) Result
}

// JobStatusProvider returns the raw state marker of a batch job
type JobStatusProvider interface {
	Status(ctx context.Context, jobID string) (string, error)
}

// SnapshotStore reads published per-date match data.
// Implementations: JSON-lines report files, Postgres, ClickHouse
type SnapshotStore interface {
	// Snapshot returns the snapshot for date; a date with no data yields an empty snapshot
	Snapshot(ctx context.Context, date time.Time) (Snapshot, error)

	// PreviousDateWithData returns the latest date d with since <= d < date that has matches
	PreviousDateWithData(ctx context.Context, date, since time.Time) (time.Time, bool, error)
}

// Notifier renders and delivers reports and alerts
type Notifier interface {
	SendReport(ctx context.Context, kind ReportKind, subject string, data Snapshot) error
	SendAlert(ctx context.Context, subject, body string) error
}
