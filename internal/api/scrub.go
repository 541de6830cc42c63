package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/iscp-sec/guardian/internal/batch"
	"github.com/iscp-sec/guardian/internal/engine"
	"github.com/iscp-sec/guardian/internal/storage"
)

// handleScrub scrubs a single record and returns the redacted copy plus
// the verdict. The tenant's policy overrides, if any, are applied over the
// server's base configuration.
func (d *Dependencies) handleScrub(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ScrubRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if len(req.Record) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Field 'record' is required"})
		return
	}

	tenant := tenantFromContext(r.Context())
	if tenant == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Not authenticated"})
		return
	}

	cfg := d.Base
	if tenant.Overrides != nil {
		cfg = cfg.Apply(*tenant.Overrides)
	}
	scrubber := engine.NewScrubber(cfg)

	rec := batch.DecodeRecord(string(req.Record))
	res := scrubber.Process(rec)
	latency := float32(time.Since(start).Seconds() * 1000)

	recordID := req.RecordID
	if recordID == "" {
		recordID = uuid.New().String()
	}

	if d.Writer != nil {
		redacted := batch.EncodeRecord(res.Redacted)
		hash := sha256.Sum256(req.Record)
		d.Writer.Write(&storage.RedactionEvent{
			EventID:         uuid.New().String(),
			RecordID:        recordID,
			RunID:           "",
			TenantID:        tenant.ID,
			Timestamp:       time.Now().UTC(),
			IsPII:           res.IsPII,
			DirectTypes:     res.DirectTypes,
			Signals:         res.Signals.Names(),
			SignalCount:     uint8(res.Signals.Count()),
			FieldCount:      uint32(len(rec)),
			RedactedPreview: storage.TruncatePayload(redacted, storage.PayloadPreviewLength),
			PayloadHash:     hex.EncodeToString(hash[:]),
			PayloadSize:     uint32(len(req.Record)),
			LatencyMs:       latency,
			Source:          "api",
		})
	}

	writeJSON(w, http.StatusOK, ScrubResponse{
		RecordID:    recordID,
		IsPII:       res.IsPII,
		Redacted:    res.Redacted,
		Signals:     res.Signals.Names(),
		SignalCount: res.Signals.Count(),
		DirectTypes: res.DirectTypes,
		LatencyMs:   float64(latency),
	})
}
