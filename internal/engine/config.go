package engine

import (
	"github.com/iscp-sec/guardian/internal/pattern"
)

// Config carries every tunable the classifier and redactor read: the signal
// threshold, mask shapes, the redaction marker, and the field-role table.
type Config struct {
	// SignalThreshold is the number of distinct quasi-identifier signal
	// categories that triggers combination redaction.
	SignalThreshold int
	// AddressPartsMin is how many address-part fields together count as an
	// address when no unified address field is present.
	AddressPartsMin int
	// RedactMarker is the opaque replacement for fully redacted values.
	RedactMarker string
	// Pattern holds the Pattern Library mask shapes.
	Pattern pattern.Config
	// Roles is the field-name → role table.
	Roles map[string]Role
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SignalThreshold: 2,
		AddressPartsMin: 2,
		RedactMarker:    "[REDACTED_PII]",
		Pattern:         pattern.DefaultConfig(),
		Roles:           DefaultRoles(),
	}
}

// Overrides partially replaces Config defaults. All pointer fields use nil
// to mean "keep the default". Loaded from the tenant policy JSONB or the
// YAML run configuration.
type Overrides struct {
	SignalThreshold *int    `json:"signal_threshold" yaml:"signal_threshold"`
	AddressPartsMin *int    `json:"address_parts_min" yaml:"address_parts_min"`
	MaskChar        *string `json:"mask_char" yaml:"mask_char"`
	RedactMarker    *string `json:"redact_marker" yaml:"redact_marker"`
	// Roles adds or replaces field-name → role-tag bindings. Unknown tags
	// are ignored.
	Roles map[string][]string `json:"roles" yaml:"roles"`
}

// Apply returns a copy of c with the overrides folded in.
func (c Config) Apply(o Overrides) Config {
	if o.SignalThreshold != nil {
		c.SignalThreshold = *o.SignalThreshold
	}
	if o.AddressPartsMin != nil {
		c.AddressPartsMin = *o.AddressPartsMin
	}
	if o.MaskChar != nil && *o.MaskChar != "" {
		c.Pattern.MaskRune = []rune(*o.MaskChar)[0]
	}
	if o.RedactMarker != nil {
		c.RedactMarker = *o.RedactMarker
	}
	if len(o.Roles) > 0 {
		roles := make(map[string]Role, len(c.Roles)+len(o.Roles))
		for k, v := range c.Roles {
			roles[k] = v
		}
		for field, tags := range o.Roles {
			var r Role
			for _, tag := range tags {
				if bit, ok := ParseRole(tag); ok {
					r |= bit
				}
			}
			roles[field] = r
		}
		c.Roles = roles
	}
	return c
}
