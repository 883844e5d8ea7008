// Package notify delivers spec11 reports and alerts
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"spec11/internal/core/mailtext"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/logger"
	"spec11/internal/services/spec11/domain"
)

// Options configures the SMTP notifier
type Options struct {
	// Addr is host:port of the relay
	Addr     string
	Username string
	Password string

	From     string
	ReplyTo  string
	BCC      []string
	AlertTo  []string
	Registry string
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends one report email per registrar and alerts to the operations list
type SMTP struct {
	opts Options
	auth smtp.Auth
	send sendFunc
	log  logger.Logger
	now  func() time.Time
}

var _ domain.Notifier = (*SMTP)(nil)

// NewSMTP builds a notifier; a missing From or Addr is a config error
func NewSMTP(o Options) (*SMTP, error) {
	if strings.TrimSpace(o.Addr) == "" {
		return nil, perr.InvalidArgf("smtp addr is required")
	}
	if strings.TrimSpace(o.From) == "" {
		return nil, perr.InvalidArgf("smtp from is required")
	}
	s := &SMTP{
		opts: o,
		send: smtp.SendMail,
		log:  *logger.Named("notify.smtp"),
		now:  time.Now,
	}
	if o.Username != "" {
		host, _, err := net.SplitHostPort(o.Addr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "smtp addr %q", o.Addr)
		}
		s.auth = smtp.PlainAuth("", o.Username, o.Password, host)
	}
	return s, nil
}

type reportView struct {
	Registry string
	Date     string
	Email    string
	Matches  []domain.ThreatMatch
}

// SendReport emails every registrar in data that has matches.
// All registrars are attempted; failures are joined into one error
func (s *SMTP) SendReport(ctx context.Context, kind domain.ReportKind, subject string, data domain.Snapshot) error {
	tmpl := dailyTmpl
	if kind == domain.ReportMonthly {
		tmpl = monthlyTmpl
	}

	var errs []error
	sent := 0
	for _, r := range data.Registrars {
		if len(r.Matches) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		body, err := render(tmpl, reportView{
			Registry: s.opts.Registry,
			Date:     domain.FormatDay(data.Date),
			Email:    r.RegistrarEmail,
			Matches:  r.Matches,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		to := append([]string{r.RegistrarEmail}, s.opts.BCC...)
		if err := s.deliver(to, []string{r.RegistrarEmail}, subject, body); err != nil {
			s.log.Error().Err(err).Str("registrar", r.RegistrarEmail).Msg("spec11 report email failed")
			errs = append(errs, fmt.Errorf("%s: %w", r.RegistrarEmail, err))
			continue
		}
		sent++
	}

	s.log.Info().
		Str("kind", kind.String()).
		Int("sent", sent).
		Int("failed", len(errs)).
		Msg("spec11 report emails dispatched")

	if len(errs) > 0 {
		return perr.Wrapf(errors.Join(errs...), perr.ErrorCodeUnavailable, "%d of %d report emails failed", len(errs), sent+len(errs))
	}
	return nil
}

// SendAlert emails the operations list
func (s *SMTP) SendAlert(ctx context.Context, subject, body string) error {
	if len(s.opts.AlertTo) == 0 {
		return perr.InvalidArgf("no alert recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.deliver(s.opts.AlertTo, s.opts.AlertTo, subject, body); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "alert email failed")
	}
	return nil
}

// deliver sends to envelope recipients rcpt; only visible is listed in the To header
func (s *SMTP) deliver(rcpt, visible []string, subject, body string) error {
	msg := s.message(visible, subject, body)
	return s.send(s.opts.Addr, s.auth, s.opts.From, rcpt, msg)
}

func (s *SMTP) message(to []string, subject, body string) []byte {
	var b bytes.Buffer
	hdr := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, mailtext.Header(v)) }
	hdr("From", s.opts.From)
	hdr("To", strings.Join(to, ", "))
	if s.opts.ReplyTo != "" {
		hdr("Reply-To", s.opts.ReplyTo)
	}
	hdr("Subject", subject)
	hdr("Date", s.now().UTC().Format(time.RFC1123Z))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return b.Bytes()
}

func render(t *template.Template, v reportView) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, v); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "render %s email", t.Name())
	}
	return b.String(), nil
}
