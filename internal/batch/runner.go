// Package batch is the I/O collaborator around the scrub core: CSV
// parsing, payload decoding, and the worker pool that fans records out to
// the scrubber. Records are independent, so the pool needs no shared
// state; output order matches input order for reproducibility.
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iscp-sec/guardian/internal/engine"
	"github.com/iscp-sec/guardian/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Output is one scrubbed record ready for the sink.
type Output struct {
	Row          Row
	Result       engine.Result
	RedactedJSON string
}

// Stats summarizes a finished (or cancelled) run.
type Stats struct {
	Records int
	PII     int
}

// Runner fans rows out to a fixed worker pool and hands results to the
// sink in input order.
type Runner struct {
	scrubber *engine.Scrubber
	workers  int
	events   storage.EventWriter // nil disables audit events
	logger   *zap.Logger
	runID    string
	tenantID string
}

// NewRunner creates a Runner. workers below 1 is clamped to 1.
func NewRunner(scrubber *engine.Scrubber, workers int, events storage.EventWriter, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		scrubber: scrubber,
		workers:  workers,
		events:   events,
		logger:   logger,
		runID:    uuid.New().String(),
	}
}

// RunID returns the identifier stamped on this run's audit events.
func (r *Runner) RunID() string { return r.runID }

// SetTenantID sets the tenant recorded on audit events.
func (r *Runner) SetTenantID(id string) { r.tenantID = id }

type job struct {
	idx int
	row Row
}

type done struct {
	idx int
	out Output
}

// Run consumes rows from next until io.EOF, scrubs them on the worker
// pool, and calls sink once per record in input order. Cancelling ctx
// stops the submission of new rows; in-flight records complete and are
// still delivered to the sink.
func (r *Runner) Run(ctx context.Context, next func() (Row, error), sink func(Output) error) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job)
	results := make(chan done, r.workers)

	g.Go(func() error {
		defer close(jobs)
		for idx := 0; ; idx++ {
			row, err := next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			select {
			case jobs <- job{idx: idx, row: row}:
			case <-gctx.Done():
				r.logger.Warn("run cancelled, draining in-flight records",
					zap.Int("submitted", idx),
				)
				return gctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- done{idx: j.idx, out: r.process(j.row)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		stats   Stats
		sinkErr error
		pending = make(map[int]Output)
		nextIdx int
	)
	for d := range results {
		pending[d.idx] = d.out
		for {
			out, ok := pending[nextIdx]
			if !ok {
				break
			}
			delete(pending, nextIdx)
			nextIdx++

			if sinkErr != nil {
				continue
			}
			stats.Records++
			if out.Result.IsPII {
				stats.PII++
			}
			if err := sink(out); err != nil {
				sinkErr = fmt.Errorf("write output: %w", err)
				cancel()
			}
		}
	}

	err := g.Wait()
	if sinkErr != nil {
		return stats, sinkErr
	}
	return stats, err
}

// process scrubs one row and emits its audit event.
func (r *Runner) process(row Row) Output {
	start := time.Now()

	rec := DecodeRecord(row.RawJSON)
	res := r.scrubber.Process(rec)
	redacted := EncodeRecord(res.Redacted)

	if r.events != nil {
		hash := sha256.Sum256([]byte(row.RawJSON))
		r.events.Write(&storage.RedactionEvent{
			EventID:         uuid.New().String(),
			RecordID:        row.RecordID,
			RunID:           r.runID,
			TenantID:        r.tenantID,
			Timestamp:       start,
			IsPII:           res.IsPII,
			DirectTypes:     res.DirectTypes,
			Signals:         res.Signals.Names(),
			SignalCount:     uint8(res.Signals.Count()),
			FieldCount:      uint32(len(rec)),
			RedactedPreview: storage.TruncatePayload(redacted, storage.PayloadPreviewLength),
			PayloadHash:     hex.EncodeToString(hash[:]),
			PayloadSize:     uint32(len(row.RawJSON)),
			LatencyMs:       float32(time.Since(start)) / float32(time.Millisecond),
			Source:          "batch",
		})
	}

	return Output{Row: row, Result: res, RedactedJSON: redacted}
}
