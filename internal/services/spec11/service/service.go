// Package service provides the spec11 report scheduler
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spec11/internal/core/threatdiff"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/logger"
	"spec11/internal/services/spec11/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config carries the presentation and policy knobs of the scheduler
type Config struct {
	// RegistryName prefixes report subjects
	RegistryName string

	// LookbackMonths bounds the baseline search; values below one mean one
	LookbackMonths int
}

// Service runs one publish decision per invocation; it holds no mutable state
type Service struct {
	Store    domain.SnapshotStore
	Notifier domain.Notifier
	Poller   *Poller
	Baseline *BaselineResolver
	Cfg      Config

	// NewRunID tags the log context of each invocation
	NewRunID func() string
}

var _ domain.PublisherPort = (*Service)(nil)

// New constructs the scheduler
func New(poller *Poller, store domain.SnapshotStore, notifier domain.Notifier, cfg Config) *Service {
	if poller == nil {
		panic("spec11.Service requires a non nil Poller")
	}
	if store == nil {
		panic("spec11.Service requires a non nil SnapshotStore")
	}
	if notifier == nil {
		panic("spec11.Service requires a non nil Notifier")
	}
	if cfg.LookbackMonths <= 0 {
		cfg.LookbackMonths = 1
	}
	return &Service{
		Store:    store,
		Notifier: notifier,
		Poller:   poller,
		Baseline: NewBaselineResolver(store, cfg.LookbackMonths),
		Cfg:      cfg,
		NewRunID: uuid.NewString,
	}
}

// Publish polls the job once and, on a terminal state, sends the report or alert for date
func (s *Service) Publish(ctx context.Context, jobID string, date time.Time) domain.Result {
	date = domain.Day(date)
	day := domain.FormatDay(date)
	if s.NewRunID != nil {
		ctx = logger.WithRun(ctx, s.NewRunID())
	}
	l := logger.C(ctx).With().Str("mod", "spec11").Str("job_id", jobID).Str("date", day).Logger()
	res := domain.Result{JobID: jobID, Date: date}

	state, raw, err := s.Poller.Poll(ctx, jobID)
	if err != nil {
		return s.unhandled(ctx, &l, res, err)
	}

	switch state {
	case domain.JobRunning:
		l.Debug().Str("status", raw).Msg("spec11: job not terminal; retry later")
		res.Signal = domain.SignalRetryLater
		res.Kind = domain.KindTransientState
		return res
	case domain.JobFailed:
		l.Warn().Str("status", raw).Msg("spec11: job ended in failure")
		f := domain.Fail(domain.KindUpstreamJobFailure, "poll job status",
			perr.Unavailablef("job %s ended in status %s", jobID, raw))
		return s.alert(ctx, &l, res, f,
			fmt.Sprintf("Spec11 Dataflow Pipeline Failure %s", day),
			fmt.Sprintf("Spec11 %s job %s ended in status failure.", day, jobID))
	}

	if domain.IsMonthlyReportDay(date) {
		return s.publishMonthly(ctx, &l, res)
	}
	return s.publishDaily(ctx, &l, res)
}

func (s *Service) publishMonthly(ctx context.Context, l *zerolog.Logger, res domain.Result) domain.Result {
	cur, err := s.Store.Snapshot(ctx, res.Date)
	if err != nil {
		return s.unhandled(ctx, l, res, domain.Fail(domain.KindFetchFailure, "load snapshot", err))
	}
	report := threatdiff.NonEmpty(cur)
	report.Date = res.Date
	subject := fmt.Sprintf("%s Monthly Threat Detector [%s]", s.Cfg.RegistryName, domain.FormatDay(res.Date))
	return s.send(ctx, l, res, domain.ReportMonthly, subject, report)
}

func (s *Service) publishDaily(ctx context.Context, l *zerolog.Logger, res domain.Result) domain.Result {
	day := domain.FormatDay(res.Date)

	base, ok, err := s.Baseline.Find(ctx, res.Date)
	if err != nil {
		return s.unhandled(ctx, l, res, err)
	}
	if !ok {
		f := domain.Fail(domain.KindMissingBaseline, "find baseline",
			perr.NotFoundf("no snapshot since %s", domain.FormatDay(s.Baseline.WindowStart(res.Date))))
		return s.alert(ctx, l, res, f,
			fmt.Sprintf("Spec11 Diff Error %s", day),
			fmt.Sprintf("Could not find a previous file within the past month of %s", day))
	}
	res.Baseline = base

	prev, err := s.Store.Snapshot(ctx, base)
	if err != nil {
		return s.unhandled(ctx, l, res, domain.Fail(domain.KindFetchFailure, "load baseline snapshot", err))
	}
	cur, err := s.Store.Snapshot(ctx, res.Date)
	if err != nil {
		return s.unhandled(ctx, l, res, domain.Fail(domain.KindFetchFailure, "load snapshot", err))
	}

	diff := threatdiff.Diff(prev, cur)
	diff.Date = res.Date
	l.Debug().Str("baseline", domain.FormatDay(base)).Int("registrars", diff.Len()).Msg("spec11: diff computed")

	subject := fmt.Sprintf("%s Daily Threat Detector [%s]", s.Cfg.RegistryName, day)
	return s.send(ctx, l, res, domain.ReportDaily, subject, diff)
}

func (s *Service) send(ctx context.Context, l *zerolog.Logger, res domain.Result, kind domain.ReportKind, subject string, data domain.Snapshot) domain.Result {
	if err := s.Notifier.SendReport(ctx, kind, subject, data); err != nil {
		return s.unhandled(ctx, l, res, domain.Fail(domain.KindFetchFailure, "send report",
			perr.Wrapf(err, perr.CodeOf(err), "%s report delivery failed", kind)))
	}
	res.Signal = domain.SignalSuccess
	res.Kind = domain.KindNone
	res.Report = kind
	res.Registrars = data.Len()
	res.Matches = data.MatchCount()
	l.Info().
		Str("report", kind.String()).
		Int("registrars", res.Registrars).
		Int("matches", res.Matches).
		Msg("spec11: report sent")
	return res
}

// unhandled alerts with the failure detail; err is coerced into a fetch failure when untyped
func (s *Service) unhandled(ctx context.Context, l *zerolog.Logger, res domain.Result, err error) domain.Result {
	var f *domain.Failure
	if !errors.As(err, &f) {
		f = domain.Fail(domain.KindFetchFailure, "publish", err)
	}
	res.Err = f
	day := domain.FormatDay(res.Date)
	return s.alert(ctx, l, res, f,
		fmt.Sprintf("Spec11 Publish Failure %s", day),
		fmt.Sprintf("Spec11 %s publish action failed due to %s", day, res.Detail()))
}

// alert sends exactly one alert and returns the terminal result for f
func (s *Service) alert(ctx context.Context, l *zerolog.Logger, res domain.Result, f *domain.Failure, subject, body string) domain.Result {
	res.Kind = f.Kind
	res.Signal = f.Kind.Signal()
	res.Err = f
	res.Alerted = true

	ev := l.Error()
	if res.Signal == domain.SignalHandledFailure {
		ev = l.Warn()
	}
	ev.Err(f).Str("kind", f.Kind.String()).Msg("spec11: publish did not succeed; alerting")

	if err := s.Notifier.SendAlert(ctx, subject, body); err != nil {
		res.AlertErr = err
		l.Error().Err(err).Str("subject", subject).Msg("spec11: alert delivery failed")
	}
	return res
}
