package recorder

import "TpexRadar/internal/model"

// ScanRecord holds one completed radar scan for persistence. The
// pipeline never reads recorded scans back; the table is an append-only
// audit trail.
type ScanRecord struct {
	DateLabel string
	Results   []model.InstrumentResult
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(rec *ScanRecord) error
	Close() error
}
