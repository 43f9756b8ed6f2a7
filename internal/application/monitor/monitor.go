// Package monitor drives the ingestion pipeline: scan the data
// directories, tail changed files from their cursors, normalize and
// deduplicate records, and fold them into the billing-window tree.
// One cycle always runs to completion; file-watcher events only shorten
// the wait before the next one.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-claude-usage/internal/config"
	"github.com/penwyp/go-claude-usage/internal/core/constants"
	"github.com/penwyp/go-claude-usage/internal/core/dedup"
	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/core/normalize"
	"github.com/penwyp/go-claude-usage/internal/core/window"
	"github.com/penwyp/go-claude-usage/internal/data/cursor"
	"github.com/penwyp/go-claude-usage/internal/data/reader"
	"github.com/penwyp/go-claude-usage/internal/data/scanner"
	"github.com/penwyp/go-claude-usage/internal/data/watcher"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// Monitor owns the whole pipeline. Cycles are the only writer of the
// aggregation tree; Snapshot may be called from any goroutine.
type Monitor struct {
	cfg        *config.Config
	scanner    *scanner.FileScanner
	cursors    *cursor.Cache
	ledger     *dedup.Ledger
	normalizer *normalize.Normalizer
	engine     *window.Engine

	mu    sync.RWMutex
	stats model.IngestStats
}

// NewMonitor wires the pipeline from the given config and loads any
// persisted cursors. The config is validated and defaulted in place.
func NewMonitor(cfg *config.Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cursors, err := cursor.NewCache(cfg.CacheDir, cfg.DisableCache, cfg.TrackTools())
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor cache: %w", err)
	}
	cursors.Load()

	return &Monitor{
		cfg:        cfg,
		scanner:    scanner.NewFileScanner(cfg.DataDirs...),
		cursors:    cursors,
		ledger:     dedup.NewLedger(),
		normalizer: normalize.NewNormalizer(nil, cfg.ProjectNamePrefixes),
		engine:     window.NewEngine(cfg.GapThreshold, cfg.TokenLimit),
	}, nil
}

// PinUnifiedStart forces the unified window anchor for every later
// snapshot.
func (m *Monitor) PinUnifiedStart(start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.PinUnifiedStart(start)
}

// InvalidateCursors drops the loaded read positions so the next cycle
// rebuilds the aggregate from the start of every file. The tree only lives
// for this process, so a caller that renders totals wants one full pass
// before going incremental.
func (m *Monitor) InvalidateCursors() {
	m.cursors.Invalidate()
}

// RunCycle performs one scan-tail-fold pass over the data directories and
// returns the cycle's counters. Files that fail mid-read keep their events
// folded but their cursor untouched, so the next cycle retries the read
// and deduplication absorbs the replay.
func (m *Monitor) RunCycle() model.IngestStats {
	started := time.Now()
	var cycle model.IngestStats

	files := m.scanner.Scan()
	cycle.FilesScanned = len(files)
	pending := m.cursors.Changed(files)

	m.mu.Lock()
	for _, p := range pending {
		m.readPending(p, &cycle)
	}
	m.stats.Add(cycle)
	m.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Cycle complete: duration %v, scanned %d files, read %d, %d lines, %d parse errors, %d schema errors, %d io errors",
		time.Since(started), cycle.FilesScanned, cycle.FilesRead, cycle.LinesRead,
		cycle.ParseErrors, cycle.SchemaErrors, cycle.IOErrors))
	return cycle
}

// readPending tails one changed file from its resolved offset. Caller
// holds the write lock.
func (m *Monitor) readPending(p cursor.PendingFile, cycle *model.IngestStats) {
	projectName, sessionId := normalize.ParseSessionPath(p.Path, m.scanner.Roots())

	res, err := reader.Each(p.Path, p.Offset, func(entry reader.Entry) bool {
		m.ingest(entry.Log, projectName, sessionId, cycle)
		return true
	})
	cycle.LinesRead += res.LinesRead
	cycle.ParseErrors += res.ParseErrors

	if err != nil {
		cycle.IOErrors++
		util.LogWarn(fmt.Sprintf("Read failed for %s, will retry next cycle: %v", p.Path, err))
		return
	}

	cycle.FilesRead++
	m.cursors.Update(p, res.Offset)
}

// ingest normalizes one decoded line and folds it unless it is a schema
// reject or a duplicate.
func (m *Monitor) ingest(line model.UsageLine, projectName, sessionId string, cycle *model.IngestStats) {
	event, err := m.normalizer.Normalize(line, projectName, sessionId)
	if err != nil {
		cycle.SchemaErrors++
		util.LogDebug(fmt.Sprintf("Dropping record in session %s: %v", sessionId, err))
		return
	}

	if !m.cfg.TrackTools() {
		event.Usage.ToolCallCounts = nil
		event.Usage.ToolCallCount = 0
	}

	if m.ledger.IsDuplicate(event.MessageId, event.RequestId) {
		return
	}
	m.engine.Fold(event)
}

// Snapshot returns an immutable view of the aggregation tree evaluated at
// the time provider's current time, with the dedup and ingestion counters
// filled in.
func (m *Monitor) Snapshot() *window.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.engine.Snapshot(util.GetTimeProvider().Now())
	snap.Dedup = m.ledger.Stats()
	snap.Ingest = m.stats
	snap.Ingest.CacheDiscards = m.cursors.Discards()
	return snap
}

// RunOnce performs a single cycle, persists cursors, and returns the
// resulting snapshot. This is the one-shot query path.
func (m *Monitor) RunOnce() *window.Snapshot {
	m.cycleAndPersist()
	return m.Snapshot()
}

// Run polls until the context is cancelled. A file watcher, when available,
// shortens the wait before the next cycle; when it cannot be created the
// loop degrades to pure polling. Cursors are persisted after every cycle
// and once more on the way out.
func (m *Monitor) Run(ctx context.Context) error {
	var events <-chan model.FileEvent
	w, err := watcher.NewFileWatcher(m.scanner.Roots())
	if err != nil {
		util.LogWarn(fmt.Sprintf("File watcher unavailable, falling back to polling: %v", err))
	} else {
		events = w.Events()
		defer w.Close()
	}

	m.cycleAndPersist()

	timer := time.NewTimer(m.cfg.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down monitor...")
			if err := m.cursors.Save(); err != nil {
				util.LogWarn(fmt.Sprintf("Failed to persist cursors on shutdown: %v", err))
			}
			return nil

		case <-timer.C:
			m.cycleAndPersist()
			timer.Reset(m.cfg.PollInterval)

		case event := <-events:
			util.LogDebug(fmt.Sprintf("File changed: %s (%s)", event.Path, event.Operation))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(constants.WatcherWakeDelay)
		}
	}
}

func (m *Monitor) cycleAndPersist() {
	m.RunCycle()
	if err := m.cursors.Save(); err != nil {
		util.LogWarn(fmt.Sprintf("Failed to persist cursors: %v", err))
	}
}
