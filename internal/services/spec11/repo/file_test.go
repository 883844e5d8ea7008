package repo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "spec11/internal/platform/errors"
	kit "spec11/internal/platform/testkit"
	"spec11/internal/services/spec11/domain"
)

var (
	fm1 = domain.ThreatMatch{DomainName: "a.example", ThreatType: "MALWARE", PlatformType: "ANY_PLATFORM"}
	fm2 = domain.ThreatMatch{DomainName: "b.example", ThreatType: "SOCIAL_ENGINEERING", PlatformType: "ANY_PLATFORM", Metadata: "NONE"}
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func writeRaw(t *testing.T, fsx *FileStore, date time.Time, body string) {
	t.Helper()
	p := fsx.Path(date)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_PathLayout(t *testing.T) {
	fsx := NewFileStore("/reports")
	got := fsx.Path(time.Date(2024, 5, 10, 17, 30, 0, 0, time.UTC))
	want := filepath.Join("/reports", "2024-05", "SPEC11_MONTHLY_REPORT_2024-05-10")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}

func TestFileStore_SnapshotParsesLinesAfterHeader(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	d := day(t, "2024-05-10")
	writeRaw(t, fsx, d, strings.Join([]string{
		"Map from registrar email / name to detected subdomain threats:",
		`{"registrarClientId":"reg-a","registrarEmailAddress":"a@x","threatMatches":[{"fullyQualifiedDomainName":"a.example","threatType":"MALWARE","platformType":"ANY_PLATFORM"}]}`,
		"",
		`{"registrarEmailAddress":"b@y","threatMatches":[{"fullyQualifiedDomainName":"b.example","threatType":"SOCIAL_ENGINEERING","platformType":"ANY_PLATFORM","threatEntryMetadata":"NONE"},{"fullyQualifiedDomainName":"a.example","threatType":"MALWARE","platformType":"ANY_PLATFORM"}]}`,
	}, "\n"))

	snap, err := fsx.Snapshot(context.Background(), d)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Len() != 2 || !snap.Date.Equal(d) {
		t.Fatalf("snapshot = %+v", snap)
	}
	a := snap.ByEmail()["a@x"]
	if a.RegistrarID != "reg-a" || len(a.Matches) != 1 || a.Matches[0] != fm1 {
		t.Fatalf("a@x = %+v", a)
	}
	b := snap.ByEmail()["b@y"]
	if len(b.Matches) != 2 || b.Matches[0] != fm2 || b.Matches[1] != fm1 {
		t.Fatalf("b@y = %+v", b)
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	snap, err := fsx.Snapshot(context.Background(), day(t, "2024-05-10"))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestFileStore_MalformedDataIsJSONError(t *testing.T) {
	cases := []struct {
		name, body, line string
	}{
		{"bad json", "header\n{\"registrarEmailAddress\":\"a@x\",\"threatMatches\":[\n", "line 2"},
		{"missing email", "header\n{\"threatMatches\":[]}\n", "line 2"},
		{"duplicate email", "header\n{\"registrarEmailAddress\":\"a@x\",\"threatMatches\":[]}\n{\"registrarEmailAddress\":\"a@x\",\"threatMatches\":[]}\n", "line 3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fsx := NewFileStore(t.TempDir())
			d := day(t, "2024-05-10")
			writeRaw(t, fsx, d, c.body)

			_, err := fsx.Snapshot(context.Background(), d)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !perr.IsCode(err, perr.ErrorCodeJSON) {
				t.Fatalf("code = %v, err = %v", perr.CodeOf(err), err)
			}
			kit.MustContain(t, err.Error(), c.line)
		})
	}
}

func TestFileStore_HeaderOnlyIsEmpty(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	d := day(t, "2024-05-10")
	writeRaw(t, fsx, d, "Map from registrar email / name to detected subdomain threats:\n")

	snap, err := fsx.Snapshot(context.Background(), d)
	if err != nil || !snap.IsEmpty() {
		t.Fatalf("snap=%+v err=%v", snap, err)
	}
}

func TestFileStore_WriteReportRoundTrip(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	in := domain.Snapshot{Date: day(t, "2024-06-01"), Registrars: []domain.RegistrarThreatMatches{
		{RegistrarID: "r1", RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{fm1, fm2, fm1}},
	}}
	if err := fsx.WriteReport(in); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out, err := fsx.Snapshot(context.Background(), in.Date)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got := out.ByEmail()["a@x"]
	if got.RegistrarID != "r1" || len(got.Matches) != 3 || got.Matches[2] != fm1 {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestFileStore_PreviousDateWithData(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	write := func(s string, regs ...domain.RegistrarThreatMatches) {
		if err := fsx.WriteReport(domain.Snapshot{Date: day(t, s), Registrars: regs}); err != nil {
			t.Fatal(err)
		}
	}
	write("2024-04-20", domain.RegistrarThreatMatches{RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{fm1}})
	write("2024-05-03", domain.RegistrarThreatMatches{RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{fm1}})
	write("2024-05-08", domain.RegistrarThreatMatches{RegistrarEmail: "a@x"}) // empty lists only
	write("2024-05-10", domain.RegistrarThreatMatches{RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{fm2}})

	ctx := context.Background()

	got, ok, err := fsx.PreviousDateWithData(ctx, day(t, "2024-05-10"), day(t, "2024-04-10"))
	if err != nil || !ok || !got.Equal(day(t, "2024-05-03")) {
		t.Fatalf("got=%v ok=%v err=%v", got, ok, err)
	}

	_, ok, err = fsx.PreviousDateWithData(ctx, day(t, "2024-05-03"), day(t, "2024-04-21"))
	if err != nil || ok {
		t.Fatalf("expected none inside window, ok=%v err=%v", ok, err)
	}

	got, ok, _ = fsx.PreviousDateWithData(ctx, day(t, "2024-05-03"), day(t, "2024-04-20"))
	if !ok || !got.Equal(day(t, "2024-04-20")) {
		t.Fatalf("window start should be inclusive, got=%v ok=%v", got, ok)
	}
}

func TestFileStore_PreviousDateWithData_PropagatesParseErrors(t *testing.T) {
	fsx := NewFileStore(t.TempDir())
	writeRaw(t, fsx, day(t, "2024-05-09"), "header\nnot json\n")

	_, _, err := fsx.PreviousDateWithData(context.Background(), day(t, "2024-05-10"), day(t, "2024-04-10"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileStore(t.TempDir()).Snapshot(ctx, day(t, "2024-05-10")); err == nil {
		t.Fatalf("expected context error")
	}
}
