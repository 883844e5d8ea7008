package domain

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used in subjects, file names and requests
const DateLayout = "2006-01-02"

// MonthlyReportDay is the day of month on which the monthly report replaces the daily diff
const MonthlyReportDay = 2

// ThreatMatch describes one detected threat for a domain.
// All fields are comparable so two matches are equal iff every field matches
type ThreatMatch struct {
	DomainName   string `json:"fullyQualifiedDomainName"`
	ThreatType   string `json:"threatType"`
	PlatformType string `json:"platformType,omitempty"`
	Metadata     string `json:"threatEntryMetadata,omitempty"`
}

// RegistrarThreatMatches groups matches for one registrar in detection order
type RegistrarThreatMatches struct {
	RegistrarID    string        `json:"registrarClientId,omitempty"`
	RegistrarEmail string        `json:"registrarEmailAddress"`
	Matches        []ThreatMatch `json:"threatMatches"`
}

// Snapshot is the full per-registrar match set for one calendar date
type Snapshot struct {
	Date       time.Time
	Registrars []RegistrarThreatMatches
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// FormatDay renders t as YYYY-MM-DD
func FormatDay(t time.Time) string { return t.Format(DateLayout) }

// IsMonthlyReportDay reports whether date takes the monthly path
func IsMonthlyReportDay(date time.Time) bool { return date.Day() == MonthlyReportDay }

// ByEmail indexes the snapshot by registrar email
func (s Snapshot) ByEmail() map[string]RegistrarThreatMatches {
	out := make(map[string]RegistrarThreatMatches, len(s.Registrars))
	for _, r := range s.Registrars {
		out[r.RegistrarEmail] = r
	}
	return out
}

// Len returns the number of registrar entries
func (s Snapshot) Len() int { return len(s.Registrars) }

// MatchCount returns the total number of matches across registrars
func (s Snapshot) MatchCount() int {
	n := 0
	for _, r := range s.Registrars {
		n += len(r.Matches)
	}
	return n
}

// IsEmpty reports whether the snapshot carries no matches at all
func (s Snapshot) IsEmpty() bool { return s.MatchCount() == 0 }

// Emails returns the registrar emails sorted ascending
func (s Snapshot) Emails() []string {
	out := make([]string, 0, len(s.Registrars))
	for _, r := range s.Registrars {
		out = append(out, r.RegistrarEmail)
	}
	sort.Strings(out)
	return out
}

// JobState is the classified state of the batch job
type JobState uint8

const (
	// JobRunning covers every non-terminal or unrecognized status
	JobRunning JobState = iota
	// JobDone means the job finished successfully
	JobDone
	// JobFailed means the job finished unsuccessfully
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobDone:
		return "done"
	case JobFailed:
		return "failed"
	default:
		return "running"
	}
}

// Terminal reports whether the job reached a final state
func (s JobState) Terminal() bool { return s == JobDone || s == JobFailed }

// ReportKind selects the email template and subject
type ReportKind uint8

const (
	// ReportMonthly is the full aggregate sent on the monthly report day
	ReportMonthly ReportKind = iota + 1
	// ReportDaily carries only matches new since the baseline
	ReportDaily
)

func (k ReportKind) String() string {
	switch k {
	case ReportMonthly:
		return "monthly"
	case ReportDaily:
		return "daily"
	default:
		return "none"
	}
}
