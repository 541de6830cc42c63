package batch

import (
	"encoding/json"
	"testing"
)

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			"plain json",
			`{"name": "Alice Wonder", "age": 30}`,
			map[string]any{"name": "Alice Wonder", "age": json.Number("30")},
		},
		{
			"csv doubled quotes",
			`"{""name"": ""Alice Wonder""}"`,
			map[string]any{"name": "Alice Wonder"},
		},
		{
			"leading whitespace",
			`   {"k": "v"}`,
			map[string]any{"k": "v"},
		},
		{
			"empty object",
			`{}`,
			map[string]any{},
		},
		{
			"garbage degrades to empty",
			`not json at all`,
			map[string]any{},
		},
		{
			"truncated json degrades to empty",
			`{"name": "Ali`,
			map[string]any{},
		},
		{
			"trailing garbage degrades to empty",
			`{"name": "Alice Wonder"}junk`,
			map[string]any{},
		},
		{
			"second json value degrades to empty",
			`{"a": "1"} {"b": "2"}`,
			map[string]any{},
		},
		{
			"trailing whitespace is fine",
			`{"k": "v"}   `,
			map[string]any{"k": "v"},
		},
		{
			"empty string degrades to empty",
			``,
			map[string]any{},
		},
		{
			"null value preserved",
			`{"note": null}`,
			map[string]any{"note": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeRecord(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("DecodeRecord(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for k, v := range tt.want {
				gv, ok := got[k]
				if !ok || gv != v {
					t.Errorf("DecodeRecord(%q)[%s] = %v, want %v", tt.raw, k, gv, v)
				}
			}
		})
	}
}

func TestDecodeRecord_NumbersKeepSourceText(t *testing.T) {
	rec := DecodeRecord(`{"contact": 9876543210}`)
	n, ok := rec["contact"].(json.Number)
	if !ok {
		t.Fatalf("contact is %T, want json.Number", rec["contact"])
	}
	if n.String() != "9876543210" {
		t.Errorf("number text = %q, want 9876543210", n.String())
	}
}

func TestEncodeRecord(t *testing.T) {
	out := EncodeRecord(map[string]any{"k": "v"})
	if out != `{"k":"v"}` {
		t.Errorf("EncodeRecord = %q", out)
	}
}
