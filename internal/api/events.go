package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iscp-sec/guardian/internal/chread"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// handleListEvents returns paginated redaction events for a tenant,
// filtered by run, verdict, source, and time window.
func (d *Dependencies) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Event queries require ClickHouse"})
		return
	}

	q := r.URL.Query()
	tenantID := q.Get("tenant_id")
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Query parameter 'tenant_id' is required"})
		return
	}

	params := chread.ListEventsParams{
		TenantID: tenantID,
		Page:     1,
		PageSize: defaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > maxPageSize {
				n = maxPageSize
			}
			params.PageSize = n
		}
	}
	if v := q.Get("run_id"); v != "" {
		params.RunID = &v
	}
	if v := q.Get("is_pii"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Query parameter 'is_pii' must be a boolean"})
			return
		}
		params.IsPII = &b
	}
	if v := q.Get("source"); v != "" {
		params.Source = &v
	}
	if v := q.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Query parameter 'start_time' must be RFC3339"})
			return
		}
		params.StartTime = &t
	}
	if v := q.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Query parameter 'end_time' must be RFC3339"})
			return
		}
		params.EndTime = &t
	}

	rows, total, err := d.Reader.ListEvents(r.Context(), params)
	if err != nil {
		d.Logger.Error("list events failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to fetch events"})
		return
	}

	events := make([]EventResp, 0, len(rows))
	for _, e := range rows {
		events = append(events, EventResp{
			EventID:         e.EventID,
			RecordID:        e.RecordID,
			RunID:           e.RunID,
			TenantID:        e.TenantID,
			Timestamp:       e.Timestamp,
			IsPII:           e.IsPII == 1,
			DirectTypes:     e.DirectTypes,
			Signals:         e.Signals,
			SignalCount:     int(e.SignalCount),
			FieldCount:      int(e.FieldCount),
			RedactedPreview: e.RedactedPreview,
			LatencyMs:       e.LatencyMs,
			Source:          e.Source,
		})
	}

	writeJSON(w, http.StatusOK, ListEventsResp{
		Events:   events,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// handleRunStats returns aggregate verdict counts for one batch run.
func (d *Dependencies) handleRunStats(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Event queries require ClickHouse"})
		return
	}

	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Query parameter 'tenant_id' is required"})
		return
	}
	runID := r.PathValue("run_id")

	stats, err := d.Reader.GetRunStats(r.Context(), tenantID, runID)
	if err != nil {
		d.Logger.Error("run stats failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to fetch run stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
