package engine

import "regexp"

// Signals is the per-record quasi-identifier signal set: four independent
// category booleans plus the address counters the redactor reuses.
type Signals struct {
	Name       bool
	Email      bool
	Address    bool
	DeviceOrIP bool

	// AddressParts counts address-part fields (city/state/postal) present
	// with non-empty values.
	AddressParts int
	// UnifiedAddress reports whether a unified address field is present.
	UnifiedAddress bool
}

// Count returns the number of signal categories present, in [0,4].
func (s Signals) Count() int {
	n := 0
	for _, on := range []bool{s.Name, s.Email, s.Address, s.DeviceOrIP} {
		if on {
			n++
		}
	}
	return n
}

// Names returns the firing category names, for audit events.
func (s Signals) Names() []string {
	var names []string
	if s.Name {
		names = append(names, "name")
	}
	if s.Email {
		names = append(names, "email")
	}
	if s.Address {
		names = append(names, "address")
	}
	if s.DeviceOrIP {
		names = append(names, "device_or_ip")
	}
	return names
}

// nameTokenRe matches an alphabetic name token: a letter followed by
// letters, dots, apostrophes, or hyphens.
var (
	nameTokenRe = regexp.MustCompile(`^[A-Za-z][A-Za-z.'-]*$`)
	spaceSplit  = regexp.MustCompile(`\s+`)
)

// LooksLikeFullName reports whether s has at least two whitespace-separated
// alphabetic name tokens.
func LooksLikeFullName(s string) bool {
	alpha := 0
	for _, tok := range spaceSplit.Split(s, -1) {
		if tok != "" && nameTokenRe.MatchString(tok) {
			alpha++
		}
	}
	return alpha >= 2
}

// Classify computes the record's quasi-identifier signals, independent of
// any direct-identifier scan.
func (s *Scrubber) Classify(rec Record) Signals {
	var sig Signals
	var hasFirst, hasLast bool

	for key, val := range rec {
		role := s.cfg.Roles[key]
		if role == 0 || !present(val) {
			continue
		}
		text, _ := Stringify(val)

		if role.Has(RoleName) && LooksLikeFullName(text) {
			sig.Name = true
		}
		if role.Has(RoleFirstName) {
			hasFirst = true
		}
		if role.Has(RoleLastName) {
			hasLast = true
		}
		if role.Has(RoleEmail) && s.lib.ValidEmail(text) {
			sig.Email = true
		}
		if role.Has(RoleAddress) {
			sig.UnifiedAddress = true
		}
		if role.Has(RoleAddressPart) {
			sig.AddressParts++
		}
		if role.Has(RoleDevice) {
			sig.DeviceOrIP = true
		}
		if role.Has(RoleIP) && s.lib.ValidIPv4(text) {
			sig.DeviceOrIP = true
		}
	}

	if hasFirst && hasLast {
		sig.Name = true
	}
	if sig.UnifiedAddress || sig.AddressParts >= s.cfg.AddressPartsMin {
		sig.Address = true
	}
	return sig
}
