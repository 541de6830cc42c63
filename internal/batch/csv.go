package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row is one input CSV row handed to the scrub pipeline.
type Row struct {
	RecordID string
	RawJSON  string
}

// payloadColumns are the header names accepted for the JSON payload,
// checked in order.
var payloadColumns = []string{"data_json", "Data_json"}

// CSVReader reads input rows from a record_id/data_json CSV.
type CSVReader struct {
	cr         *csv.Reader
	idIdx      int
	payloadIdx int
}

// NewCSVReader wraps r and validates the header. A missing record_id or
// payload column is fatal for the batch.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idIdx, payloadIdx := -1, -1
	for i, col := range header {
		if col == "record_id" {
			idIdx = i
		}
	}
	for _, want := range payloadColumns {
		for i, col := range header {
			if col == want {
				payloadIdx = i
				break
			}
		}
		if payloadIdx >= 0 {
			break
		}
	}
	if idIdx < 0 || payloadIdx < 0 {
		return nil, fmt.Errorf("input must have columns: record_id and data_json (or Data_json)")
	}

	return &CSVReader{cr: cr, idIdx: idIdx, payloadIdx: payloadIdx}, nil
}

// Next returns the next input row, or io.EOF when the input is exhausted.
func (r *CSVReader) Next() (Row, error) {
	fields, err := r.cr.Read()
	if err != nil {
		return Row{}, err
	}
	var row Row
	if r.idIdx < len(fields) {
		row.RecordID = fields[r.idIdx]
	}
	if r.payloadIdx < len(fields) {
		row.RawJSON = fields[r.payloadIdx]
	}
	return row, nil
}

// CSVWriter writes the redacted output CSV.
type CSVWriter struct {
	cw *csv.Writer
}

// outputHeader is the fixed output column set.
var outputHeader = []string{"record_id", "redacted_data_json", "is_pii"}

// NewCSVWriter wraps w and writes the output header.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(outputHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &CSVWriter{cw: cw}, nil
}

// Write appends one redacted output row.
func (w *CSVWriter) Write(recordID, redactedJSON string, isPII bool) error {
	return w.cw.Write([]string{recordID, redactedJSON, strconv.FormatBool(isPII)})
}

// Flush flushes buffered rows and reports any deferred write error.
func (w *CSVWriter) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
