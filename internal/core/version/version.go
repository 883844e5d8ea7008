// Package version reports what build is running
package version

import "runtime/debug"

// set with -ldflags "-X spec11/internal/core/version.version=v0.1.0 -X spec11/internal/core/version.commit=abcd123"
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// BuildInfo is served by /version and reported to clickhouse
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info describes the running binary. Without an ldflags commit it falls
// back to the vcs revision go build stamped
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: Commit(), Date: date}
}

// Commit is the short commit hash, "unknown" when neither source has one
func Commit() string {
	c := commit
	if c == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	switch {
	case c == "":
		return "unknown"
	case len(c) > 7:
		return c[:7]
	}
	return c
}
