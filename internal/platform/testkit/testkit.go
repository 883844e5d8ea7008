// Package testkit has the assertions and seam helpers shared by package tests
package testkit

import (
	"strings"
	"testing"
)

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
}

// MustContain fails the test unless haystack contains needle.
// Long haystacks are logged in full before failing
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	if len(haystack) > 200 {
		t.Logf("full output:\n%s", haystack)
		haystack = haystack[:200] + "..."
	}
	t.Fatalf("want %q in %q", needle, haystack)
}
