package main

import (
	"testing"

	s11dom "spec11/internal/services/spec11/domain"
)

func TestExitCode(t *testing.T) {
	cases := map[s11dom.Signal]int{
		s11dom.SignalSuccess:        exitOK,
		s11dom.SignalHandledFailure: exitHandled,
		s11dom.SignalRetryLater:     exitRetry,
		s11dom.SignalUnhandledError: exitUnhandled,
		s11dom.Signal(99):           exitUnhandled,
	}
	for sig, want := range cases {
		if got := exitCode(sig); got != want {
			t.Fatalf("exitCode(%v) = %d, want %d", sig, got, want)
		}
	}
}
