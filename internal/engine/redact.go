package engine

import "strings"

// redactValue rewrites one field's value. Direct-identifier masks apply on
// sight regardless of the verdict; role-based combination masks apply only
// when the record crossed the signal threshold. Absent values pass through.
func (s *Scrubber) redactValue(key string, val any, v Verdict, sig Signals) any {
	orig, ok := Stringify(val)
	if !ok {
		return val
	}

	role := s.cfg.Roles[key]
	text := s.lib.MaskDirect(orig, role.Has(RoleNumericExempt))
	if !v.CombinationRedact {
		return text
	}

	if role.Has(RoleName) && LooksLikeFullName(orig) {
		text = s.maskFullName(orig)
	}
	if role.Has(RoleFirstName) || role.Has(RoleLastName) {
		text = s.maskLeadingRune(text)
	}
	if role.Has(RoleEmail) {
		text = s.lib.MaskEmail(text)
	}
	if role.Has(RoleAddress) {
		text = s.cfg.RedactMarker
	} else if role.Has(RoleAddressPart) && sig.Address {
		text = s.cfg.RedactMarker
	}
	if role.Has(RoleDevice) {
		text = s.cfg.RedactMarker
	}
	if role.Has(RoleIP) {
		text = s.lib.MaskIPv4(text)
	}
	return text
}

// maskFullName keeps the first letter of each alphabetic name token and
// overwrites the rest, leaving whitespace and non-alphabetic tokens
// verbatim.
func (s *Scrubber) maskFullName(name string) string {
	var b strings.Builder
	for _, tok := range splitKeepSpace(name) {
		if isSpace(tok) || !nameTokenRe.MatchString(tok) {
			b.WriteString(tok)
			continue
		}
		r := []rune(tok)
		b.WriteString(string(r[0]))
		b.WriteString(strings.Repeat(string(s.cfg.Pattern.MaskRune), len(r)-1))
	}
	return b.String()
}

// maskLeadingRune keeps the first character and overwrites the rest.
func (s *Scrubber) maskLeadingRune(text string) string {
	r := []rune(text)
	if len(r) == 0 {
		return text
	}
	return string(r[0]) + strings.Repeat(string(s.cfg.Pattern.MaskRune), len(r)-1)
}

// splitKeepSpace splits s into alternating non-space and space tokens,
// preserving the original text exactly when rejoined.
func splitKeepSpace(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = space
		}
	}
	if len(s) > 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isSpace(tok string) bool {
	return tok != "" && (tok[0] == ' ' || tok[0] == '\t' || tok[0] == '\n' || tok[0] == '\r' || tok[0] == '\v' || tok[0] == '\f')
}
