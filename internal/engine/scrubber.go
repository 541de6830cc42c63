// Package engine implements the record-level PII detection and redaction
// core: role classification, quasi-identifier signals, the verdict rule,
// and the redactor. The core never fails — every code path produces a
// verdict and a redacted record.
package engine

import (
	"sort"

	"github.com/iscp-sec/guardian/internal/pattern"
)

// Record is an unordered field-name → value mapping, as decoded from one
// input row's JSON payload.
type Record map[string]any

// Result is the outcome of scrubbing one record.
type Result struct {
	// Redacted has exactly the same keys as the input record.
	Redacted Record
	IsPII    bool
	Signals  Signals
	// DirectTypes lists the direct-identifier types matched anywhere in
	// the record, sorted for determinism.
	DirectTypes []string
}

// Scrubber runs classify → verdict → redact over single records. It holds
// no cross-record state and is safe for concurrent use.
type Scrubber struct {
	cfg Config
	lib *pattern.Library
}

// NewScrubber creates a Scrubber with the given configuration.
func NewScrubber(cfg Config) *Scrubber {
	return &Scrubber{cfg: cfg, lib: pattern.NewLibrary(cfg.Pattern)}
}

// Config returns the scrubber's effective configuration.
func (s *Scrubber) Config() Config { return s.cfg }

// Process scrubs one record and returns the redacted copy plus the
// verdict. No field is ever dropped.
func (s *Scrubber) Process(rec Record) Result {
	var direct []string
	seen := make(map[string]bool)
	for key, val := range rec {
		text, ok := Stringify(val)
		if !ok {
			continue
		}
		exempt := s.cfg.Roles[key].Has(RoleNumericExempt)
		for _, t := range s.lib.ScanDirect(text, exempt) {
			if !seen[t] {
				seen[t] = true
				direct = append(direct, t)
			}
		}
	}
	sort.Strings(direct)

	sig := s.Classify(rec)
	v := Decide(len(direct) > 0, sig, s.cfg.SignalThreshold)

	out := make(Record, len(rec))
	for key, val := range rec {
		out[key] = s.redactValue(key, val, v, sig)
	}

	return Result{
		Redacted:    out,
		IsPII:       v.IsPII,
		Signals:     sig,
		DirectTypes: direct,
	}
}
