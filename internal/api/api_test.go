package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iscp-sec/guardian/internal/engine"
	"go.uber.org/zap"
)

const testKey = "gsk_static_test_key"

func newTestRouter() http.Handler {
	deps := &Dependencies{
		Base:      engine.DefaultConfig(),
		Logger:    zap.NewNop(),
		StaticKey: testKey,
		CacheTTL:  time.Second,
	}
	return NewRouter(deps)
}

func doScrub(t *testing.T, router http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/scrub", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestScrub_AuthRequired(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"wrong token", "gsk_wrong_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doScrub(t, router, tt.token, `{"record": {}}`)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestScrub_RedactsRecord(t *testing.T) {
	router := newTestRouter()

	body := `{"record_id": "r1", "record": {"name": "Alice Wonder", "email": "alice@example.com"}}`
	rec := doScrub(t, router, testKey, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp ScrubResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RecordID != "r1" {
		t.Errorf("RecordID = %q, want r1", resp.RecordID)
	}
	if !resp.IsPII {
		t.Error("name + email should be PII")
	}
	if got := resp.Redacted["name"]; got != "AXXXX WXXXXX" {
		t.Errorf("name = %v, want masked", got)
	}
	if resp.SignalCount != 2 {
		t.Errorf("SignalCount = %d, want 2", resp.SignalCount)
	}
}

func TestScrub_IsolatedEmailNotPII(t *testing.T) {
	router := newTestRouter()

	rec := doScrub(t, router, testKey, `{"record": {"email": "bob@corp.io"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ScrubResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsPII {
		t.Error("isolated email should not be PII")
	}
}

func TestScrub_GeneratesRecordID(t *testing.T) {
	router := newTestRouter()

	rec := doScrub(t, router, testKey, `{"record": {}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ScrubResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RecordID == "" {
		t.Error("record_id should be generated when absent")
	}
}

func TestScrub_BadRequests(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing record", `{"record_id": "r1"}`},
		{"invalid json", `{{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doScrub(t, router, testKey, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestTenants_UnavailableWithoutPostgres(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/guardian/tenants",
		strings.NewReader(`{"name": "acme"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestEvents_UnavailableWithoutClickHouse(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/guardian/events?tenant_id=t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"empty", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"bearer only", "Bearer ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := extractBearerToken(req)
			if got != tt.want || ok != tt.ok {
				t.Errorf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
			}
		})
	}
}
