package repo

import (
	"context"
	"time"

	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/store"
	"spec11/internal/services/spec11/domain"
)

// CHTable is the ClickHouse table the batch job appends to.
//
//	CREATE TABLE spec11.threat_matches (
//	  report_date Date, registrar_email String, registrar_id String, seq UInt32,
//	  domain_name String, threat_type LowCardinality(String),
//	  platform_type LowCardinality(String), metadata String
//	) ENGINE = ReplacingMergeTree ORDER BY (report_date, registrar_email, seq)
const CHTable = "spec11.threat_matches"

// CHStore reads snapshots from ClickHouse
type CHStore struct {
	ch store.Clickhouse
}

var _ domain.SnapshotStore = (*CHStore)(nil)

// NewCH returns a ClickHouse backed snapshot store
func NewCH(ch store.Clickhouse) *CHStore {
	if ch == nil {
		panic("spec11.CHStore requires a non nil Clickhouse")
	}
	return &CHStore{ch: ch}
}

// Snapshot loads every match for date in detection order
func (s *CHStore) Snapshot(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	date = domain.Day(date)
	rows, err := s.ch.Query(ctx, `
		SELECT registrar_email, registrar_id, domain_name, threat_type, platform_type, metadata
		FROM `+CHTable+` FINAL
		WHERE report_date = ?
		ORDER BY registrar_email, seq`,
		date,
	)
	if err != nil {
		return domain.Snapshot{Date: date}, perr.Wrapf(err, perr.ErrorCodeDB, "ch load snapshot %s", domain.FormatDay(date))
	}
	defer rows.Close()

	var out []matchRow
	for rows.Next() {
		var x matchRow
		if err := rows.Scan(&x.email, &x.id, &x.m.DomainName, &x.m.ThreatType, &x.m.PlatformType, &x.m.Metadata); err != nil {
			return domain.Snapshot{Date: date}, perr.Wrapf(err, perr.ErrorCodeDB, "ch scan snapshot %s", domain.FormatDay(date))
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{Date: date}, perr.Wrapf(err, perr.ErrorCodeDB, "ch iterate snapshot %s", domain.FormatDay(date))
	}
	return groupRows(date, out), nil
}

// PreviousDateWithData returns the newest report_date in [since, date)
func (s *CHStore) PreviousDateWithData(ctx context.Context, date, since time.Time) (time.Time, bool, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT max(report_date), count()
		FROM `+CHTable+`
		WHERE report_date < ? AND report_date >= ?`,
		domain.Day(date), domain.Day(since),
	)
	if err != nil {
		return time.Time{}, false, perr.Wrapf(err, perr.ErrorCodeDB, "ch previous snapshot before %s", domain.FormatDay(date))
	}
	defer rows.Close()

	if !rows.Next() {
		return time.Time{}, false, rows.Err()
	}
	var (
		d time.Time
		n uint64
	)
	if err := rows.Scan(&d, &n); err != nil {
		return time.Time{}, false, perr.Wrapf(err, perr.ErrorCodeDB, "ch scan previous snapshot")
	}
	// max() over no rows yields the epoch, so the count decides
	if n == 0 {
		return time.Time{}, false, nil
	}
	return domain.Day(d), true, nil
}

// SaveSnapshot appends snap as one batch
func (s *CHStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	date := domain.Day(snap.Date)
	batch := make([][]any, 0, snap.MatchCount())
	for _, r := range snap.Registrars {
		for i, m := range r.Matches {
			batch = append(batch, []any{date, r.RegistrarEmail, r.RegistrarID, uint32(i), m.DomainName, m.ThreatType, m.PlatformType, m.Metadata})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := s.ch.Insert(ctx, CHTable, batch); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "ch save snapshot %s", domain.FormatDay(date))
	}
	return nil
}
