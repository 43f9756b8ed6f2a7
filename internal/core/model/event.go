package model

import (
	"time"
)

// UsageEvent is one normalized, typed usage record ready for aggregation.
type UsageEvent struct {
	Timestamp   time.Time
	ProjectName string
	SessionId   string

	// Model is the raw model name from the log line; Family and Multiplier
	// come from the classifier.
	Model      string
	Family     string
	Multiplier float64

	MessageId   string
	RequestId   string
	Interrupted bool

	Usage TokenUsage
}

// IngestStats carries the degrade-and-count error counters for one or more
// ingestion cycles. Nothing in the pipeline raises per-record errors; these
// counters are the only failure surface.
type IngestStats struct {
	FilesScanned  int `json:"files_scanned"`
	FilesRead     int `json:"files_read"`
	LinesRead     int `json:"lines_read"`
	ParseErrors   int `json:"parse_errors"`
	SchemaErrors  int `json:"schema_errors"`
	IOErrors      int `json:"io_errors"`
	CacheDiscards int `json:"cache_discards"`
}

// Add merges another stats snapshot into this one.
func (s *IngestStats) Add(other IngestStats) {
	s.FilesScanned += other.FilesScanned
	s.FilesRead += other.FilesRead
	s.LinesRead += other.LinesRead
	s.ParseErrors += other.ParseErrors
	s.SchemaErrors += other.SchemaErrors
	s.IOErrors += other.IOErrors
	s.CacheDiscards += other.CacheDiscards
}
