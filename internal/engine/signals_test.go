package engine

import "testing"

func TestLooksLikeFullName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"two tokens", "Alice Wonder", true},
		{"three tokens", "Jean-Luc de Montfort", true},
		{"single token", "Alice", false},
		{"empty", "", false},
		{"digits", "1234 5678", false},
		{"one alpha one numeric", "Alice 42", false},
		{"apostrophe", "Mary O'Brien", true},
		{"extra whitespace", "  Alice   Wonder  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeFullName(tt.input); got != tt.want {
				t.Errorf("LooksLikeFullName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	s := NewScrubber(DefaultConfig())

	tests := []struct {
		name string
		rec  Record
		want Signals
	}{
		{
			"full name",
			Record{"name": "Alice Wonder"},
			Signals{Name: true},
		},
		{
			"single token name is not a name signal",
			Record{"name": "Alice"},
			Signals{},
		},
		{
			"first and last together",
			Record{"first_name": "Alice", "last_name": "Wonder"},
			Signals{Name: true},
		},
		{
			"first name alone",
			Record{"first_name": "Alice"},
			Signals{},
		},
		{
			"valid email",
			Record{"email": "alice@example.com"},
			Signals{Email: true},
		},
		{
			"invalid email",
			Record{"email": "not-an-email"},
			Signals{},
		},
		{
			"username with email shape",
			Record{"username": "bob@corp.io"},
			Signals{Email: true},
		},
		{
			"unified address",
			Record{"address": "12 Baker Street, Springfield"},
			Signals{Address: true, UnifiedAddress: true},
		},
		{
			"two address parts",
			Record{"city": "Mumbai", "pin_code": "400001"},
			Signals{Address: true, AddressParts: 2},
		},
		{
			"one address part",
			Record{"city": "Mumbai"},
			Signals{AddressParts: 1},
		},
		{
			"device id",
			Record{"device_id": "DVC-881"},
			Signals{DeviceOrIP: true},
		},
		{
			"valid ip",
			Record{"ip_address": "10.0.0.1"},
			Signals{DeviceOrIP: true},
		},
		{
			"invalid ip",
			Record{"ip_address": "not-an-ip"},
			Signals{},
		},
		{
			"empty values carry no signal",
			Record{"name": "", "email": "", "city": ""},
			Signals{},
		},
		{
			"null values carry no signal",
			Record{"name": nil, "device_id": nil},
			Signals{},
		},
		{
			"unknown fields ignored",
			Record{"comment": "Alice Wonder lives at 12 Baker Street"},
			Signals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Classify(tt.rec)
			if got != tt.want {
				t.Errorf("Classify(%v) = %+v, want %+v", tt.rec, got, tt.want)
			}
		})
	}
}

func TestSignalsCountAndNames(t *testing.T) {
	sig := Signals{Name: true, Email: true}
	if sig.Count() != 2 {
		t.Errorf("Count = %d, want 2", sig.Count())
	}
	names := sig.Names()
	if len(names) != 2 || names[0] != "name" || names[1] != "email" {
		t.Errorf("Names = %v, want [name email]", names)
	}

	if (Signals{}).Count() != 0 {
		t.Error("empty signals should count 0")
	}

	all := Signals{Name: true, Email: true, Address: true, DeviceOrIP: true}
	if all.Count() != 4 {
		t.Errorf("Count = %d, want 4", all.Count())
	}
}
