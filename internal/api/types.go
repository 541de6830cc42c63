package api

import (
	"encoding/json"
	"time"
)

// --- POST /v1/scrub request/response ---

// ScrubRequest is the JSON body for POST /v1/scrub.
type ScrubRequest struct {
	RecordID string `json:"record_id,omitempty"`
	// Record is the raw field mapping to scrub. Malformed payloads degrade
	// to an empty record, mirroring the batch path.
	Record json.RawMessage `json:"record"`
}

// ScrubResponse carries the redacted record and verdict.
type ScrubResponse struct {
	RecordID    string         `json:"record_id"`
	IsPII       bool           `json:"is_pii"`
	Redacted    map[string]any `json:"redacted"`
	Signals     []string       `json:"signals"`
	SignalCount int            `json:"signal_count"`
	DirectTypes []string       `json:"direct_types"`
	LatencyMs   float64        `json:"latency_ms"`
}

// --- Tenant / policy CRUD ---

// CreateTenantReq is the JSON body for POST /api/guardian/tenants.
type CreateTenantReq struct {
	Name string `json:"name"`
}

// CreateTenantResp includes the plaintext API key (shown once).
type CreateTenantResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	APIKey       string    `json:"api_key"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	CreatedAt    time.Time `json:"created_at"`
}

// PolicyResp mirrors a policies row.
type PolicyResp struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	ScrubConfig json.RawMessage `json:"scrub_config"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReplacePolicyReq is the JSON body for PUT .../policy.
type ReplacePolicyReq struct {
	ScrubConfig json.RawMessage `json:"scrub_config"`
}

// --- Events ---

// EventResp mirrors a redaction_events row.
type EventResp struct {
	EventID         string    `json:"event_id"`
	RecordID        string    `json:"record_id"`
	RunID           string    `json:"run_id"`
	TenantID        string    `json:"tenant_id"`
	Timestamp       time.Time `json:"timestamp"`
	IsPII           bool      `json:"is_pii"`
	DirectTypes     []string  `json:"direct_types"`
	Signals         []string  `json:"signals"`
	SignalCount     int       `json:"signal_count"`
	FieldCount      int       `json:"field_count"`
	RedactedPreview string    `json:"redacted_preview"`
	LatencyMs       float32   `json:"latency_ms"`
	Source          string    `json:"source"`
}

// ListEventsResp is a paginated event listing.
type ListEventsResp struct {
	Events   []EventResp `json:"events"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ErrorResp is the uniform error body.
type ErrorResp struct {
	Detail string `json:"detail"`
}
