// Package mailtext prepares untrusted strings for plain-text email
// Pipeline order for header values
// 1 Drop invalid UTF-8 and control bytes
// 2 Unicode NFC normalization
// 3 Remove format chars (ZWJ ZWNJ FEFF bidi overrides)
// 4 Collapse whitespace, including CR/LF, to single spaces
package mailtext

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var headerPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

var domainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			width.Fold,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// Header returns s safe for a single header line; CR and LF never survive
func Header(s string) string {
	s = apply(&headerPool, Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// Domain folds a domain name to the lowercase ASCII-compatible form shown in reports
func Domain(s string) string {
	s = apply(&domainPool, Sanitize(s))
	return strings.TrimSuffix(strings.TrimSpace(s), ".")
}

// Label turns an enum-style threat type into a readable label.
// SOCIAL_ENGINEERING -> Social Engineering
func Label(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(Sanitize(s), "_", " "))
	if s == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

func apply(p *sync.Pool, s string) string {
	if s == "" {
		return s
	}
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Sanitize drops invalid UTF-8, NUL, DEL, and C0/C1 controls except tab, CR and LF
func Sanitize(s string) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if bad(r, size) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !bad(r, size) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func bad(r rune, size int) bool {
	switch {
	case r == utf8.RuneError && size == 1:
		return true
	case r == '\n' || r == '\r' || r == '\t':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}
