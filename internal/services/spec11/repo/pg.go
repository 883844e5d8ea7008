package repo

import (
	"context"
	"time"

	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/store"
	"spec11/internal/services/spec11/domain"
)

// PGSchema creates the tables the Postgres stores read from
const PGSchema = `
CREATE TABLE IF NOT EXISTS spec11_threat_matches (
	report_date     date    NOT NULL,
	registrar_email text    NOT NULL,
	registrar_id    text    NOT NULL DEFAULT '',
	seq             integer NOT NULL,
	domain_name     text    NOT NULL,
	threat_type     text    NOT NULL,
	platform_type   text    NOT NULL DEFAULT '',
	metadata        text    NOT NULL DEFAULT '',
	PRIMARY KEY (report_date, registrar_email, seq)
);

CREATE TABLE IF NOT EXISTS spec11_jobs (
	job_id     text        PRIMARY KEY,
	state      text        NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);`

// PGStore reads snapshots from spec11_threat_matches
type PGStore struct {
	q store.RowQuerier
}

var _ domain.SnapshotStore = (*PGStore)(nil)

// NewPG returns a Postgres backed snapshot store
func NewPG(q store.RowQuerier) *PGStore {
	if q == nil {
		panic("spec11.PGStore requires a non nil RowQuerier")
	}
	return &PGStore{q: q}
}

// EnsureSchema applies PGSchema
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, PGSchema); err != nil {
		return perr.FromPostgres(err, "spec11 schema")
	}
	return nil
}

type matchRow struct {
	email string
	id    string
	m     domain.ThreatMatch
}

// Snapshot loads every match for date in detection order
func (s *PGStore) Snapshot(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	date = domain.Day(date)
	rows, err := store.Many(ctx, s.q, func(r store.Row) (matchRow, error) {
		var x matchRow
		err := r.Scan(&x.email, &x.id, &x.m.DomainName, &x.m.ThreatType, &x.m.PlatformType, &x.m.Metadata)
		return x, err
	}, `
		SELECT registrar_email, registrar_id, domain_name, threat_type, platform_type, metadata
		  FROM spec11_threat_matches
		 WHERE report_date = $1
		 ORDER BY registrar_email, seq`,
		date,
	)
	if err != nil {
		return domain.Snapshot{Date: date}, perr.FromPostgresf(err, "load snapshot %s", domain.FormatDay(date))
	}
	return groupRows(date, rows), nil
}

// PreviousDateWithData returns the newest report_date in [since, date)
func (s *PGStore) PreviousDateWithData(ctx context.Context, date, since time.Time) (time.Time, bool, error) {
	d, err := store.Scalar[*time.Time](ctx, s.q, `
		SELECT max(report_date)
		  FROM spec11_threat_matches
		 WHERE report_date < $1 AND report_date >= $2`,
		domain.Day(date), domain.Day(since),
	)
	if err != nil {
		return time.Time{}, false, perr.FromPostgresf(err, "previous snapshot before %s", domain.FormatDay(date))
	}
	if d == nil {
		return time.Time{}, false, nil
	}
	return domain.Day(*d), true, nil
}

// SaveSnapshot replaces the rows for snap.Date
func (s *PGStore) SaveSnapshot(ctx context.Context, tx store.TxRunner, snap domain.Snapshot) error {
	date := domain.Day(snap.Date)
	err := tx.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `DELETE FROM spec11_threat_matches WHERE report_date = $1`, date); err != nil {
			return err
		}
		for _, r := range snap.Registrars {
			for i, m := range r.Matches {
				if _, err := q.Exec(ctx, `
					INSERT INTO spec11_threat_matches
					  (report_date, registrar_email, registrar_id, seq, domain_name, threat_type, platform_type, metadata)
					VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
					date, r.RegistrarEmail, r.RegistrarID, i, m.DomainName, m.ThreatType, m.PlatformType, m.Metadata,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return perr.FromPostgresf(err, "save snapshot %s", domain.FormatDay(date))
}

// groupRows folds rows ordered by registrar into a snapshot
func groupRows(date time.Time, rows []matchRow) domain.Snapshot {
	out := domain.Snapshot{Date: date}
	for _, x := range rows {
		n := len(out.Registrars)
		if n == 0 || out.Registrars[n-1].RegistrarEmail != x.email {
			out.Registrars = append(out.Registrars, domain.RegistrarThreatMatches{
				RegistrarID:    x.id,
				RegistrarEmail: x.email,
			})
			n++
		}
		out.Registrars[n-1].Matches = append(out.Registrars[n-1].Matches, x.m)
	}
	return out
}

// PGJobs reads job states from spec11_jobs, for batch runners that report there
type PGJobs struct {
	q store.RowQuerier
}

var _ domain.JobStatusProvider = (*PGJobs)(nil)

// NewPGJobs returns a Postgres backed job status provider
func NewPGJobs(q store.RowQuerier) *PGJobs {
	if q == nil {
		panic("spec11.PGJobs requires a non nil RowQuerier")
	}
	return &PGJobs{q: q}
}

// Status returns the stored state marker for jobID
func (j *PGJobs) Status(ctx context.Context, jobID string) (string, error) {
	st, err := store.One(ctx, j.q, func(r store.Row) (string, error) {
		var s string
		err := r.Scan(&s)
		return s, err
	}, `SELECT state FROM spec11_jobs WHERE job_id = $1`, jobID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "", perr.NotFoundf("job %s not found", jobID)
		}
		return "", perr.FromPostgresf(err, "job %s status", jobID)
	}
	return st, nil
}

// SetStatus upserts the state marker for jobID
func (j *PGJobs) SetStatus(ctx context.Context, jobID, state string) error {
	_, err := j.q.Exec(ctx, `
		INSERT INTO spec11_jobs (job_id, state) VALUES ($1, $2)
		ON CONFLICT (job_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		jobID, state,
	)
	return perr.FromPostgresf(err, "set job %s status", jobID)
}
