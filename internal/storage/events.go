package storage

import "time"

// EventWriter is the interface for writing redaction audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *RedactionEvent)
	Close()
}

// RedactionEvent records the outcome of scrubbing a single record. Only
// redacted content is ever persisted — the raw payload appears solely as
// a hash.
type RedactionEvent struct {
	EventID     string
	RecordID    string
	RunID       string
	TenantID    string
	Timestamp   time.Time
	IsPII       bool
	DirectTypes []string
	Signals     []string
	SignalCount uint8
	FieldCount  uint32
	// RedactedPreview is the first 500 chars of the redacted payload.
	RedactedPreview string
	// PayloadHash is the SHA256 of the raw payload.
	PayloadHash string
	PayloadSize uint32
	LatencyMs   float32
	Source      string // "batch" or "api"
}

// PayloadPreviewLength is the max chars stored in redacted_preview.
const PayloadPreviewLength = 500

// TruncatePayload returns the first N characters (runes) of a payload for
// preview storage. It never splits a multi-byte UTF-8 character.
func TruncatePayload(payload string, maxLen int) string {
	runes := []rune(payload)
	if len(runes) <= maxLen {
		return payload
	}
	return string(runes[:maxLen])
}
