package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestProcess_DirectIdentifiers(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	tests := []struct {
		name       string
		rec        Record
		wantPII    bool
		wantTypes  []string
		wantField  string
		wantMasked string
	}{
		{
			"phone in free text",
			Record{"contact": "call 9876543210"},
			true, []string{"phone"},
			"contact", "call 98XXXXXX10",
		},
		{
			"national id grouped",
			Record{"id_doc": "1234 5678 9012"},
			true, []string{"national_id"},
			"id_doc", "XXXX XXXX 9012",
		},
		{
			"passport",
			Record{"travel": "passport K1234567"},
			true, []string{"passport"},
			"travel", "passport KXXXXXX7",
		},
		{
			"payment handle",
			Record{"upi": "john.doe@okhdfc"},
			true, []string{"payment_handle"},
			"upi", "joXXXXXX@okhdfc",
		},
		{
			"phone as json number",
			Record{"contact": json.Number("9876543210")},
			true, []string{"phone"},
			"contact", "98XXXXXX10",
		},
		{
			"exempt order id keeps digits",
			Record{"order_id": "9876543210"},
			false, nil,
			"order_id", "9876543210",
		},
		{
			"exempt transaction id twelve digits",
			Record{"transaction_id": "123456789012"},
			false, nil,
			"transaction_id", "123456789012",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Process(tt.rec)
			if res.IsPII != tt.wantPII {
				t.Errorf("IsPII = %v, want %v", res.IsPII, tt.wantPII)
			}
			if !reflect.DeepEqual(res.DirectTypes, tt.wantTypes) {
				t.Errorf("DirectTypes = %v, want %v", res.DirectTypes, tt.wantTypes)
			}
			if got := res.Redacted[tt.wantField]; got != tt.wantMasked {
				t.Errorf("Redacted[%s] = %v, want %q", tt.wantField, got, tt.wantMasked)
			}
		})
	}
}

func TestProcess_CombinationRedaction(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{
		"name":  "Alice Wonder",
		"email": "alice@example.com",
	}
	res := s.Process(rec)

	if !res.IsPII {
		t.Fatal("name + email should be PII")
	}
	if got := res.Redacted["name"]; got != "AXXXX WXXXXX" {
		t.Errorf("name = %v, want %q", got, "AXXXX WXXXXX")
	}
	if got := res.Redacted["email"]; got != "alXXX@example.com" {
		t.Errorf("email = %v, want %q", got, "alXXX@example.com")
	}
}

func TestProcess_EmailOnlyIsNotPII(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	res := s.Process(Record{"email": "bob.smith@corp.io", "order_id": "12345"})
	if res.IsPII {
		t.Error("isolated email should not be PII")
	}
	// The handle matcher still masks the value on sight.
	if got := res.Redacted["email"]; got != "boXXXXXXX@corp.io" {
		t.Errorf("email = %v, want %q", got, "boXXXXXXX@corp.io")
	}
}

func TestProcess_AddressPartsBelowThreshold(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{"city": "Mumbai", "state": "Maharashtra", "pin_code": "400001"}
	res := s.Process(rec)

	if res.IsPII {
		t.Error("address alone is one signal, should not be PII")
	}
	for k, v := range rec {
		if res.Redacted[k] != v {
			t.Errorf("field %s changed: %v -> %v", k, v, res.Redacted[k])
		}
	}
}

func TestProcess_AddressPlusName(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{
		"name":     "Alice Wonder",
		"address":  "12 Baker Street, Springfield",
		"city":     "Springfield",
		"pin_code": "400001",
	}
	res := s.Process(rec)

	if !res.IsPII {
		t.Fatal("name + address should be PII")
	}
	if got := res.Redacted["address"]; got != "[REDACTED_PII]" {
		t.Errorf("address = %v, want redaction marker", got)
	}
	if got := res.Redacted["city"]; got != "[REDACTED_PII]" {
		t.Errorf("city = %v, want redaction marker", got)
	}
	if got := res.Redacted["pin_code"]; got != "[REDACTED_PII]" {
		t.Errorf("pin_code = %v, want redaction marker", got)
	}
}

func TestProcess_DeviceAndIP(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{
		"name":       "Alice Wonder",
		"device_id":  "DVC-881",
		"ip_address": "192.168.1.25",
	}
	res := s.Process(rec)

	if !res.IsPII {
		t.Fatal("name + device should be PII")
	}
	if got := res.Redacted["device_id"]; got != "[REDACTED_PII]" {
		t.Errorf("device_id = %v, want redaction marker", got)
	}
	if got := res.Redacted["ip_address"]; got != "192.168.1.X" {
		t.Errorf("ip_address = %v, want %q", got, "192.168.1.X")
	}
}

func TestProcess_FirstLastNames(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{
		"first_name": "Alice",
		"last_name":  "Wonder",
		"email":      "alice@example.com",
	}
	res := s.Process(rec)

	if !res.IsPII {
		t.Fatal("first+last name plus email should be PII")
	}
	if got := res.Redacted["first_name"]; got != "AXXXX" {
		t.Errorf("first_name = %v, want %q", got, "AXXXX")
	}
	if got := res.Redacted["last_name"]; got != "WXXXXX" {
		t.Errorf("last_name = %v, want %q", got, "WXXXXX")
	}
}

func TestProcess_PreservesKeysAndAbsentValues(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	rec := Record{
		"name":    "Alice Wonder",
		"email":   "alice@example.com",
		"note":    nil,
		"active":  true,
		"comment": "plain text",
	}
	res := s.Process(rec)

	if len(res.Redacted) != len(rec) {
		t.Fatalf("redacted has %d keys, want %d", len(res.Redacted), len(rec))
	}
	if v, ok := res.Redacted["note"]; !ok || v != nil {
		t.Errorf("null value should pass through, got %v", v)
	}
	if res.Redacted["active"] != "true" {
		t.Errorf("bool coerces to text, got %v", res.Redacted["active"])
	}
	if res.Redacted["comment"] != "plain text" {
		t.Errorf("plain text unchanged, got %v", res.Redacted["comment"])
	}
}

func TestProcess_EmptyRecord(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	res := s.Process(Record{})
	if res.IsPII {
		t.Error("empty record should not be PII")
	}
	if len(res.Redacted) != 0 {
		t.Errorf("redacted should be empty, got %v", res.Redacted)
	}
}

func TestConfigApply(t *testing.T) {
	one := 1
	star := "*"
	marker := "<GONE>"
	cfg := DefaultConfig().Apply(Overrides{
		SignalThreshold: &one,
		MaskChar:        &star,
		RedactMarker:    &marker,
		Roles: map[string][]string{
			"contact_no": {"numeric_exempt"},
			"nickname":   {"name", "bogus_tag"},
		},
	})

	if cfg.SignalThreshold != 1 {
		t.Errorf("SignalThreshold = %d, want 1", cfg.SignalThreshold)
	}
	if cfg.Pattern.MaskRune != '*' {
		t.Errorf("MaskRune = %q, want '*'", cfg.Pattern.MaskRune)
	}
	if cfg.RedactMarker != "<GONE>" {
		t.Errorf("RedactMarker = %q", cfg.RedactMarker)
	}
	if !cfg.Roles["contact_no"].Has(RoleNumericExempt) {
		t.Error("contact_no should be numeric exempt")
	}
	if !cfg.Roles["nickname"].Has(RoleName) {
		t.Error("nickname should carry the name role")
	}
	// Defaults are untouched
	if !cfg.Roles["order_id"].Has(RoleNumericExempt) {
		t.Error("default role bindings must survive Apply")
	}
	if base := DefaultConfig(); base.SignalThreshold != 2 {
		t.Errorf("Apply must not mutate defaults, got %d", base.SignalThreshold)
	}
}

func TestConfigApply_ThresholdOne(t *testing.T) {
	one := 1
	s := NewScrubber(DefaultConfig().Apply(Overrides{SignalThreshold: &one}))

	res := s.Process(Record{"name": "Alice Wonder"})
	if !res.IsPII {
		t.Error("threshold 1 with a name signal should be PII")
	}
	if got := res.Redacted["name"]; got != "AXXXX WXXXXX" {
		t.Errorf("name = %v, want masked", got)
	}
}
