package storage

import (
	"go.uber.org/zap"
)

// LogWriter logs redaction events instead of persisting them. It is the
// fallback when ClickHouse is not configured or unreachable.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *RedactionEvent) {
	w.logger.Info("redaction event",
		zap.String("event_id", event.EventID),
		zap.String("record_id", event.RecordID),
		zap.String("run_id", event.RunID),
		zap.String("tenant_id", event.TenantID),
		zap.Bool("is_pii", event.IsPII),
		zap.Strings("direct_types", event.DirectTypes),
		zap.Strings("signals", event.Signals),
		zap.Uint32("field_count", event.FieldCount),
		zap.Float32("latency_ms", event.LatencyMs),
		zap.String("source", event.Source),
	)
}

func (w *LogWriter) Close() {}
