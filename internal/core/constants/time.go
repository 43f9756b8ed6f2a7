// Package constants holds the durations shared across the windowing engine
// and the ingestion loop.
package constants

import "time"

const (
	// WindowDuration is the nominal length of one billing window.
	WindowDuration = 5 * time.Hour

	// DefaultGapThreshold is the idle time after which a window stops
	// being active and a gap may be inserted.
	DefaultGapThreshold = 5 * time.Hour

	// DefaultPollInterval is the pause between ingestion cycles.
	DefaultPollInterval = 10 * time.Second

	// WatcherWakeDelay is how soon after a file-change hint the next cycle
	// runs, coalescing bursts of writes into a single read.
	WatcherWakeDelay = 500 * time.Millisecond
)
