package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	perr "spec11/internal/platform/errors"
	kit "spec11/internal/platform/testkit"
	"spec11/internal/services/spec11/domain"
)

type sent struct {
	from string
	to   []string
	msg  string
}

type fakeRelay struct {
	mails  []sent
	failTo map[string]bool
}

func (f *fakeRelay) send(_ string, _ smtp.Auth, from string, to []string, msg []byte) error {
	if f.failTo[to[0]] {
		return errors.New("550 mailbox unavailable")
	}
	f.mails = append(f.mails, sent{from: from, to: to, msg: string(msg)})
	return nil
}

func newTestSMTP(t *testing.T, o Options, r *fakeRelay) *SMTP {
	t.Helper()
	if o.Addr == "" {
		o.Addr = "relay.local:25"
	}
	if o.From == "" {
		o.From = "abuse@registry.example"
	}
	s, err := NewSMTP(o)
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	s.send = r.send
	s.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func snapshot() domain.Snapshot {
	return domain.Snapshot{
		Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Registrars: []domain.RegistrarThreatMatches{
			{RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{
				{DomainName: "Bad.Example.", ThreatType: "SOCIAL_ENGINEERING", PlatformType: "ANY_PLATFORM"},
			}},
			{RegistrarEmail: "empty@z"},
			{RegistrarEmail: "b@y", Matches: []domain.ThreatMatch{
				{DomainName: "worse.example", ThreatType: "MALWARE"},
			}},
		},
	}
}

func TestNewSMTP_Validation(t *testing.T) {
	if _, err := NewSMTP(Options{From: "f@x"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("missing addr err = %v", err)
	}
	if _, err := NewSMTP(Options{Addr: "relay:25"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("missing from err = %v", err)
	}
	if _, err := NewSMTP(Options{Addr: "relay", From: "f@x", Username: "u"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("auth without port err = %v", err)
	}
	s, err := NewSMTP(Options{Addr: "relay:587", From: "f@x", Username: "u", Password: "p"})
	if err != nil || s.auth == nil {
		t.Fatalf("auth not configured: %v", err)
	}
}

func TestSendReport_OneMailPerRegistrarWithMatches(t *testing.T) {
	r := &fakeRelay{}
	s := newTestSMTP(t, Options{Registry: "Example Registry", ReplyTo: "support@registry.example", BCC: []string{"archive@registry.example"}}, r)

	err := s.SendReport(context.Background(), domain.ReportDaily, "Example Registry Daily Threat Detector [2024-05-10]", snapshot())
	if err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if len(r.mails) != 2 {
		t.Fatalf("mails = %d, want 2", len(r.mails))
	}

	m := r.mails[0]
	if m.from != "abuse@registry.example" || m.to[0] != "a@x" || m.to[1] != "archive@registry.example" {
		t.Fatalf("envelope = %+v", m)
	}
	kit.MustContain(t, m.msg, "To: a@x\r\n")
	kit.MustContain(t, m.msg, "Reply-To: support@registry.example\r\n")
	kit.MustContain(t, m.msg, "Subject: Example Registry Daily Threat Detector [2024-05-10]\r\n")
	kit.MustContain(t, m.msg, "newly flagged")
	kit.MustContain(t, m.msg, "bad.example  Social Engineering (Any Platform)")
	if strings.Contains(m.msg, "archive@") {
		t.Fatalf("bcc leaked into headers:\n%s", m.msg)
	}
	kit.MustContain(t, r.mails[1].msg, "worse.example  Malware\r\n")
}

func TestSendReport_MonthlyTemplate(t *testing.T) {
	r := &fakeRelay{}
	s := newTestSMTP(t, Options{Registry: "Example Registry"}, r)
	if err := s.SendReport(context.Background(), domain.ReportMonthly, "monthly", snapshot()); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	kit.MustContain(t, r.mails[0].msg, "continue to be flagged")
}

func TestSendReport_ContinuesPastFailures(t *testing.T) {
	r := &fakeRelay{failTo: map[string]bool{"a@x": true}}
	s := newTestSMTP(t, Options{}, r)

	err := s.SendReport(context.Background(), domain.ReportDaily, "subj", snapshot())
	if err == nil {
		t.Fatal("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	kit.MustContain(t, err.Error(), "a@x")
	if len(r.mails) != 1 || r.mails[0].to[0] != "b@y" {
		t.Fatalf("b@y should still be sent, mails=%+v", r.mails)
	}
}

func TestSendReport_CanceledContext(t *testing.T) {
	r := &fakeRelay{}
	s := newTestSMTP(t, Options{}, r)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendReport(ctx, domain.ReportDaily, "subj", snapshot())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(r.mails) != 0 {
		t.Fatalf("nothing should be sent, got %d", len(r.mails))
	}
}

func TestSendAlert(t *testing.T) {
	r := &fakeRelay{}
	s := newTestSMTP(t, Options{AlertTo: []string{"ops@registry.example", "oncall@registry.example"}}, r)

	if err := s.SendAlert(context.Background(), "Spec11 Diff Error 2024-05-10", "line one\nline two"); err != nil {
		t.Fatalf("SendAlert: %v", err)
	}
	if len(r.mails) != 1 || len(r.mails[0].to) != 2 {
		t.Fatalf("mails = %+v", r.mails)
	}
	kit.MustContain(t, r.mails[0].msg, "To: ops@registry.example, oncall@registry.example\r\n")
	kit.MustContain(t, r.mails[0].msg, "\r\n\r\nline one\r\nline two")
}

func TestSendAlert_NoRecipients(t *testing.T) {
	s := newTestSMTP(t, Options{}, &fakeRelay{})
	if err := s.SendAlert(context.Background(), "s", "b"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendAlert_RelayError(t *testing.T) {
	r := &fakeRelay{failTo: map[string]bool{"ops@x": true}}
	s := newTestSMTP(t, Options{AlertTo: []string{"ops@x"}}, r)
	if err := s.SendAlert(context.Background(), "s", "b"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestMessage_HeaderInjectionStripped(t *testing.T) {
	r := &fakeRelay{}
	s := newTestSMTP(t, Options{AlertTo: []string{"ops@x"}}, r)
	if err := s.SendAlert(context.Background(), "hi\r\nBcc: evil@x", "b"); err != nil {
		t.Fatalf("SendAlert: %v", err)
	}
	if strings.Contains(r.mails[0].msg, "\r\nBcc:") {
		t.Fatalf("header injection not stripped:\n%s", r.mails[0].msg)
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLog()
	if err := n.SendReport(context.Background(), domain.ReportDaily, "s", snapshot()); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if err := n.SendAlert(context.Background(), "s", "b"); err != nil {
		t.Fatalf("SendAlert: %v", err)
	}
}
