// Package pattern holds the direct-identifier matchers and their masking
// transforms. Each matcher recognizes one identifier type anywhere inside a
// text value; masks run cumulatively over the same text, so a value carrying
// several identifier types has all of them rewritten.
package pattern

import (
	"regexp"
	"strings"
)

// Pre-compiled recognizers — high precision, targeted per identifier type.
// The digit-length matchers (phone, national ID) are not regexes: RE2 has no
// lookaround, so "exactly N digits, not adjacent to other digits" is enforced
// by scanning maximal digit runs instead.
var (
	// Passport-like code: one letter from a restricted set (no I/O/Q) and
	// exactly seven digits, as a whole token.
	passportRe = regexp.MustCompile(`\b[A-HJ-NPR-Za-hj-npr-z][0-9]{7}\b`)

	// Payment handle: handle@provider, provider starting with a letter.
	// Deliberately loose on the provider side — it subsumes the email shape,
	// so bare email addresses are partially masked on sight too.
	handleRe = regexp.MustCompile(`\b([A-Za-z0-9._-]{2,})@([A-Za-z][A-Za-z0-9._-]+)\b`)

	// Email: local@domain.tld, domain with at least one dot and a 2-24
	// letter top-level segment.
	emailRe = regexp.MustCompile(`\b([A-Za-z0-9._%+-]{1,64})@([A-Za-z0-9.-]{1,255}\.[A-Za-z]{2,24})\b`)

	// IPv4: four dot-separated 1-3 digit groups.
	ipv4Re = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)

	digitRunRe = regexp.MustCompile(`[0-9]+`)

	// Optional "4-4-4" national-ID grouping, collapsed before matching.
	groupedDigitsRe = regexp.MustCompile(`[0-9]{4}\s*[0-9]{4}\s*[0-9]{4}`)
)

// Direct-identifier type names reported by ScanDirect.
const (
	TypePhone         = "phone"
	TypeNationalID    = "national_id"
	TypePassport      = "passport"
	TypePaymentHandle = "payment_handle"
)

// Config fixes the shapes the masks produce. Use DefaultConfig as the base;
// the zero value is not usable.
type Config struct {
	MaskRune       rune // character overwriting hidden spans
	PhoneDigits    int  // run length treated as a phone-like number
	NationalDigits int  // run length treated as a national-ID-like number
	PhoneKeep      int  // digits kept at each end of a phone-like number
	NationalKeep   int  // trailing digits kept on a national-ID-like number
	HandleKeep     int  // leading handle/local-part characters kept
}

// DefaultConfig returns the fixed production mask shapes.
func DefaultConfig() Config {
	return Config{
		MaskRune:       'X',
		PhoneDigits:    10,
		NationalDigits: 12,
		PhoneKeep:      2,
		NationalKeep:   4,
		HandleKeep:     2,
	}
}

// Library applies the matchers with one fixed mask configuration.
// It is stateless and safe for concurrent use.
type Library struct {
	cfg Config
}

// NewLibrary creates a Library with the given mask configuration.
func NewLibrary(cfg Config) *Library {
	return &Library{cfg: cfg}
}

// matchers, in application order. numeric marks the types suppressed on
// numeric-identifier-exempt fields (business/reference numbers of matching
// digit length must not be misclassified).
var matchers = []struct {
	name    string
	numeric bool
	has     func(*Library, string) bool
	mask    func(*Library, string) string
}{
	{TypePhone, true, (*Library).HasPhone, (*Library).MaskPhone},
	{TypeNationalID, true, (*Library).HasNationalID, (*Library).MaskNationalID},
	{TypePassport, false, (*Library).HasPassport, (*Library).MaskPassport},
	{TypePaymentHandle, false, (*Library).HasPaymentHandle, (*Library).MaskPaymentHandle},
}

// ScanDirect reports which always-sensitive identifier types occur in s.
// numericExempt suppresses the digit-length matchers.
func (l *Library) ScanDirect(s string, numericExempt bool) []string {
	var found []string
	for _, m := range matchers {
		if m.numeric && numericExempt {
			continue
		}
		if m.has(l, s) {
			found = append(found, m.name)
		}
	}
	return found
}

// MaskDirect applies every always-on mask cumulatively, honoring the
// exemption the same way ScanDirect does.
func (l *Library) MaskDirect(s string, numericExempt bool) string {
	for _, m := range matchers {
		if m.numeric && numericExempt {
			continue
		}
		s = m.mask(l, s)
	}
	return s
}

// HasPhone reports whether s contains an isolated run of exactly
// PhoneDigits digits.
func (l *Library) HasPhone(s string) bool {
	return hasDigitRun(s, l.cfg.PhoneDigits)
}

// HasNationalID reports whether s contains an isolated NationalDigits-digit
// run, after collapsing an optional 4-4-4 grouping.
func (l *Library) HasNationalID(s string) bool {
	return hasDigitRun(CollapseGrouped(s), l.cfg.NationalDigits)
}

// HasPassport reports whether s contains a passport-like token.
func (l *Library) HasPassport(s string) bool {
	return passportRe.MatchString(s)
}

// HasPaymentHandle reports whether s contains a handle@provider token.
func (l *Library) HasPaymentHandle(s string) bool {
	return handleRe.MatchString(s)
}

// ValidEmail reports whether s contains an email-shaped token.
func (l *Library) ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidIPv4 reports whether s contains an IPv4-shaped token.
func (l *Library) ValidIPv4(s string) bool {
	return ipv4Re.MatchString(s)
}

// MaskPhone rewrites every isolated run of exactly PhoneDigits digits,
// keeping PhoneKeep digits at each end.
func (l *Library) MaskPhone(s string) string {
	keep := l.cfg.PhoneKeep
	return maskDigitRuns(s, l.cfg.PhoneDigits, func(run string) string {
		return run[:keep] + l.repeat(len(run)-2*keep) + run[len(run)-keep:]
	})
}

// MaskNationalID collapses an optional 4-4-4 grouping, then rewrites every
// isolated NationalDigits-digit run into the fixed three-group masked
// format exposing only the last NationalKeep digits.
func (l *Library) MaskNationalID(s string) string {
	s = CollapseGrouped(s)
	return maskDigitRuns(s, l.cfg.NationalDigits, func(run string) string {
		return l.repeat(4) + " " + l.repeat(4) + " " + run[len(run)-l.cfg.NationalKeep:]
	})
}

// MaskPassport keeps the first and last character of a passport-like token
// and overwrites the six characters in between.
func (l *Library) MaskPassport(s string) string {
	return passportRe.ReplaceAllStringFunc(s, func(tok string) string {
		return tok[:1] + l.repeat(len(tok)-2) + tok[len(tok)-1:]
	})
}

// MaskPaymentHandle keeps the first HandleKeep characters of the handle,
// overwrites the remainder, and leaves the provider untouched.
func (l *Library) MaskPaymentHandle(s string) string {
	return handleRe.ReplaceAllStringFunc(s, func(tok string) string {
		m := handleRe.FindStringSubmatch(tok)
		if m == nil {
			return tok
		}
		return l.maskLocal(m[1]) + "@" + m[2]
	})
}

// MaskEmail keeps the first HandleKeep characters of the local part,
// overwrites the remainder, and leaves the domain untouched.
func (l *Library) MaskEmail(s string) string {
	return emailRe.ReplaceAllStringFunc(s, func(tok string) string {
		m := emailRe.FindStringSubmatch(tok)
		if m == nil {
			return tok
		}
		return l.maskLocal(m[1]) + "@" + m[2]
	})
}

// MaskIPv4 replaces the last octet with the mask token, keeping the first
// three octets.
func (l *Library) MaskIPv4(s string) string {
	return ipv4Re.ReplaceAllStringFunc(s, func(ip string) string {
		parts := strings.Split(ip, ".")
		if len(parts) != 4 {
			return ip
		}
		parts[3] = string(l.cfg.MaskRune)
		return strings.Join(parts, ".")
	})
}

func (l *Library) maskLocal(local string) string {
	keep := l.cfg.HandleKeep
	if len(local) < keep {
		keep = len(local)
	}
	return local[:keep] + l.repeat(len(local)-keep)
}

func (l *Library) repeat(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(string(l.cfg.MaskRune), n)
}

// CollapseGrouped rewrites every "4-4-4" whitespace-grouped digit sequence
// that is not adjacent to other digits into one contiguous 12-digit run, so
// the national-ID matcher can see it.
func CollapseGrouped(s string) string {
	locs := groupedDigitsRe.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if digitAdjacent(s, loc[0], loc[1]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		for _, c := range []byte(s[loc[0]:loc[1]]) {
			if c >= '0' && c <= '9' {
				b.WriteByte(c)
			}
		}
		last = loc[1]
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// hasDigitRun reports whether s contains a maximal digit run of exactly n.
func hasDigitRun(s string, n int) bool {
	for _, loc := range digitRunRe.FindAllStringIndex(s, -1) {
		if loc[1]-loc[0] == n {
			return true
		}
	}
	return false
}

// maskDigitRuns replaces every maximal digit run of exactly n digits with
// mask(run), leaving everything else verbatim.
func maskDigitRuns(s string, n int, mask func(run string) string) string {
	locs := digitRunRe.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if loc[1]-loc[0] != n {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(mask(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func digitAdjacent(s string, start, end int) bool {
	if start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		return true
	}
	if end < len(s) && s[end] >= '0' && s[end] <= '9' {
		return true
	}
	return false
}
