package batch

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/iscp-sec/guardian/internal/engine"
)

// DecodeRecord parses a raw data_json payload into a Record. Malformed
// payloads degrade to an empty record instead of failing: one bad row must
// not abort the batch, and an empty record trivially yields no signals, no
// direct hits, and a false verdict.
func DecodeRecord(raw string) engine.Record {
	txt := strings.TrimSpace(raw)
	if rec, err := decodeJSON(txt); err == nil {
		return rec
	}

	// CSV double-quote escaping sometimes survives into the payload;
	// collapse doubled quotes, strip the outer pair, and retry once.
	txt = strings.Trim(strings.ReplaceAll(txt, `""`, `"`), `"`)
	if rec, err := decodeJSON(txt); err == nil {
		return rec
	}

	return engine.Record{}
}

func decodeJSON(txt string) (engine.Record, error) {
	dec := json.NewDecoder(strings.NewReader(txt))
	dec.UseNumber()
	var rec engine.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	// The payload must be a single JSON value; trailing content means the
	// row is malformed and takes the degrade path.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after record")
	}
	if rec == nil {
		rec = engine.Record{}
	}
	return rec, nil
}

// EncodeRecord serializes a redacted record back to JSON text. A marshal
// failure degrades to an empty object.
func EncodeRecord(rec engine.Record) string {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
