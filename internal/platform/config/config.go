// Package config reads settings from prefixed environment variables.
// May* getters fall back to a default and warn on unparsable values; Must* getters panic
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"spec11/internal/platform/logger"
)

// Conf is a view over the environment scoped by a key prefix such as "CORE_SPEC11_"
type Conf struct{ prefix string }

// New is the unprefixed root
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// mayParse returns def for an empty value and warns when parse rejects a non-empty one
func mayParse[T any](c Conf, k string, def T, kind string, parse func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Interface("default", def).
			Msgf("invalid %s, using default", kind)
		return def
	}
	return v
}

// MustString panics when the key is unset or blank
func (c Conf) MustString(k string) string {
	v := c.lookup(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

// MayString is the trimmed value or def
func (c Conf) MayString(k, def string) string {
	if v := c.lookup(k); v != "" {
		return v
	}
	return def
}

func (c Conf) MayInt(k string, def int) int {
	return mayParse(c, k, def, "int", strconv.Atoi)
}

func (c Conf) MayBool(k string, def bool) bool {
	return mayParse(c, k, def, "bool", strconv.ParseBool)
}

// MayDuration accepts time.ParseDuration syntax such as 250ms or 10s
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return mayParse(c, k, def, "duration", time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks. def when nothing remains
func (c Conf) MayCSV(k string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum matches the value case-insensitively against allowed and returns the
// allowed spelling. An unset key yields def; anything outside allowed panics
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := c.lookup(k)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
