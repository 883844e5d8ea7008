package domain

import (
	"fmt"
	"time"
)

// Signal is the externally observable outcome of one Publish invocation
type Signal uint8

const (
	// SignalRetryLater means the job is not terminal yet; nothing was sent
	SignalRetryLater Signal = iota
	// SignalSuccess means a monthly or daily report was sent
	SignalSuccess
	// SignalHandledFailure means a designed failure branch sent its alert
	SignalHandledFailure
	// SignalUnhandledError means the data path itself failed; an alert was attempted
	SignalUnhandledError
)

func (s Signal) String() string {
	switch s {
	case SignalRetryLater:
		return "retry_later"
	case SignalSuccess:
		return "success"
	case SignalHandledFailure:
		return "handled_failure"
	case SignalUnhandledError:
		return "unhandled_error"
	default:
		return fmt.Sprintf("signal(%d)", uint8(s))
	}
}

// FailureKind classifies why an invocation did not end in success
type FailureKind uint8

const (
	// KindNone is the zero kind for successful invocations
	KindNone FailureKind = iota
	// KindTransientState means the job is still running
	KindTransientState
	// KindUpstreamJobFailure means the batch job reported failure
	KindUpstreamJobFailure
	// KindMissingBaseline means no prior snapshot was found within the lookback window
	KindMissingBaseline
	// KindFetchFailure covers I/O or malformed data while reading status, snapshots or sending reports
	KindFetchFailure
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransientState:
		return "transient_state"
	case KindUpstreamJobFailure:
		return "upstream_job_failure"
	case KindMissingBaseline:
		return "missing_baseline"
	case KindFetchFailure:
		return "fetch_failure"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Signal maps a failure kind onto the boundary signal
func (k FailureKind) Signal() Signal {
	switch k {
	case KindNone:
		return SignalSuccess
	case KindTransientState:
		return SignalRetryLater
	case KindUpstreamJobFailure, KindMissingBaseline:
		return SignalHandledFailure
	default:
		return SignalUnhandledError
	}
}

// Failure is an explicit failure value carrying its taxonomy kind
type Failure struct {
	Kind  FailureKind
	Op    string
	Cause error
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Op, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Op)
}

// Unwrap returns the underlying cause
func (f *Failure) Unwrap() error { return f.Cause }

// Fail builds a *Failure
func Fail(kind FailureKind, op string, cause error) *Failure {
	return &Failure{Kind: kind, Op: op, Cause: cause}
}

// Result describes what one Publish invocation did
type Result struct {
	Signal Signal
	Kind   FailureKind

	JobID string
	Date  time.Time

	// Report is set when a report was sent
	Report ReportKind
	// Baseline is set on the daily path once a baseline was found
	Baseline time.Time

	Registrars int
	Matches    int

	// Alerted is true when an alert send was attempted
	Alerted  bool
	AlertErr error

	// Err carries the failure for every non-success outcome except retry
	Err error
}

// Detail returns the error message attached to unhandled errors
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	if f, ok := r.Err.(*Failure); ok && f.Cause != nil {
		return f.Cause.Error()
	}
	return r.Err.Error()
}
