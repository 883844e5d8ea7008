package notify

import (
	"context"

	"spec11/internal/platform/logger"
	"spec11/internal/services/spec11/domain"
)

// Log records reports and alerts as log lines; used for dry runs and local setups
type Log struct {
	log logger.Logger
}

var _ domain.Notifier = (*Log)(nil)

// NewLog returns a log-only notifier
func NewLog() *Log { return &Log{log: *logger.Named("notify.log")} }

// SendReport logs one line per registrar with matches and a summary line
func (l *Log) SendReport(ctx context.Context, kind domain.ReportKind, subject string, data domain.Snapshot) error {
	for _, r := range data.Registrars {
		if len(r.Matches) == 0 {
			continue
		}
		l.log.Info().
			Str("kind", kind.String()).
			Str("subject", subject).
			Str("registrar", r.RegistrarEmail).
			Int("matches", len(r.Matches)).
			Msg("spec11 report (not sent)")
	}
	l.log.Info().
		Str("kind", kind.String()).
		Str("subject", subject).
		Int("registrars", data.Len()).
		Int("matches", data.MatchCount()).
		Msg("spec11 report summary (not sent)")
	return ctx.Err()
}

// SendAlert logs the alert at warn level
func (l *Log) SendAlert(ctx context.Context, subject, body string) error {
	l.log.Warn().Str("subject", subject).Str("body", body).Msg("spec11 alert (not sent)")
	return ctx.Err()
}
