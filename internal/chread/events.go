// Package chread provides read access to the ClickHouse redaction_events
// table for the HTTP API. Writes go through internal/storage.
package chread

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Reader provides read access to the redaction_events table.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}

	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the ClickHouse connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// EventRow represents a single row from the redaction_events table.
type EventRow struct {
	EventID         string
	RecordID        string
	RunID           string
	TenantID        string
	Timestamp       time.Time
	IsPII           uint8
	DirectTypes     []string
	Signals         []string
	SignalCount     uint8
	FieldCount      uint32
	RedactedPreview string
	PayloadHash     string
	PayloadSize     uint32
	LatencyMs       float32
	Source          string
}

// ListEventsParams holds filters and pagination for event listing.
type ListEventsParams struct {
	TenantID  string
	RunID     *string
	IsPII     *bool
	Source    *string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

const eventColumns = "event_id, record_id, run_id, tenant_id, timestamp, " +
	"is_pii, direct_types, signals, signal_count, field_count, " +
	"redacted_preview, payload_hash, payload_size, latency_ms, source"

// ListEvents returns paginated, filtered redaction events and the total count.
func (r *Reader) ListEvents(ctx context.Context, params ListEventsParams) ([]EventRow, int, error) {
	conditions := []string{"tenant_id = @tenant_id"}
	args := []any{
		clickhouse.Named("tenant_id", params.TenantID),
	}

	if params.RunID != nil {
		conditions = append(conditions, "run_id = @run_id")
		args = append(args, clickhouse.Named("run_id", *params.RunID))
	}
	if params.IsPII != nil {
		var v uint8
		if *params.IsPII {
			v = 1
		}
		conditions = append(conditions, "is_pii = @is_pii")
		args = append(args, clickhouse.Named("is_pii", v))
	}
	if params.Source != nil {
		conditions = append(conditions, "source = @source")
		args = append(args, clickhouse.Named("source", *params.Source))
	}
	if params.StartTime != nil {
		conditions = append(conditions, "timestamp >= @start_time")
		args = append(args, clickhouse.Named("start_time", *params.StartTime))
	}
	if params.EndTime != nil {
		conditions = append(conditions, "timestamp <= @end_time")
		args = append(args, clickhouse.Named("end_time", *params.EndTime))
	}

	where := strings.Join(conditions, " AND ")
	offset := (params.Page - 1) * params.PageSize

	var total uint64
	countQuery := fmt.Sprintf("SELECT count() FROM redaction_events WHERE %s", where)
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListEvents count: %w", err)
	}

	dataQuery := fmt.Sprintf(
		"SELECT %s FROM redaction_events WHERE %s ORDER BY timestamp DESC LIMIT @limit OFFSET @offset",
		eventColumns, where,
	)
	args = append(args,
		clickhouse.Named("limit", uint32(params.PageSize)),
		clickhouse.Named("offset", uint32(offset)),
	)

	rows, err := r.conn.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListEvents query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(
			&e.EventID, &e.RecordID, &e.RunID, &e.TenantID, &e.Timestamp,
			&e.IsPII, &e.DirectTypes, &e.Signals, &e.SignalCount, &e.FieldCount,
			&e.RedactedPreview, &e.PayloadHash, &e.PayloadSize, &e.LatencyMs, &e.Source,
		); err != nil {
			return nil, 0, fmt.Errorf("ListEvents scan: %w", err)
		}
		events = append(events, e)
	}

	return events, int(total), rows.Err()
}

// RunStats holds aggregate counts for one batch run.
type RunStats struct {
	Records int `json:"records"`
	PII     int `json:"pii"`
	Clean   int `json:"clean"`
}

// GetRunStats returns aggregate verdict counts for a run.
func (r *Reader) GetRunStats(ctx context.Context, tenantID, runID string) (*RunStats, error) {
	row := r.conn.QueryRow(ctx,
		"SELECT count(), countIf(is_pii = 1) FROM redaction_events "+
			"WHERE tenant_id = @tenant_id AND run_id = @run_id",
		clickhouse.Named("tenant_id", tenantID),
		clickhouse.Named("run_id", runID),
	)

	var total, pii uint64
	if err := row.Scan(&total, &pii); err != nil {
		return nil, fmt.Errorf("GetRunStats: %w", err)
	}
	return &RunStats{
		Records: int(total),
		PII:     int(pii),
		Clean:   int(total - pii),
	}, nil
}
