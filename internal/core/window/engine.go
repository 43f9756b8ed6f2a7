package window

import (
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// Engine is the sole mutator of the Project/Session/Block tree. It folds
// deduplicated events in and hands out immutable snapshots; it performs no
// I/O and never fails.
type Engine struct {
	projects     map[string]*Project
	pinnedStart  *time.Time
	gapThreshold time.Duration
	tokenLimit   int
}

// NewEngine creates an empty aggregation engine. A non-positive threshold
// falls back to the default.
func NewEngine(gapThreshold time.Duration, tokenLimit int) *Engine {
	if gapThreshold <= 0 {
		gapThreshold = DefaultGapThreshold
	}
	return &Engine{
		projects:     make(map[string]*Project),
		gapThreshold: gapThreshold,
		tokenLimit:   tokenLimit,
	}
}

// PinUnifiedStart overrides the unified window anchor. The override always
// wins over the earliest-active-block resolution.
func (e *Engine) PinUnifiedStart(start time.Time) {
	pinned := start
	e.pinnedStart = &pinned
}

func (e *Engine) project(name string) *Project {
	p, ok := e.projects[name]
	if !ok {
		p = newProject(name)
		e.projects[name] = p
	}
	return p
}

// Fold places one event into its session's block tree. If a block's nominal
// span contains the event timestamp and the block was still active at that
// time, the event folds into it; otherwise a new block opens at the floored
// hour. Placement depends only on the event timestamp, so folding is
// commutative across files.
func (e *Engine) Fold(event model.UsageEvent) {
	sess := e.project(event.ProjectName).session(event.SessionId)
	sess.observe(event.Timestamp)

	block := sess.blockFor(event.Timestamp, e.gapThreshold)
	if block == nil {
		block = newBlock(event)
		sess.addBlock(block)
	}
	block.fold(event)
}

// Snapshot copies the tree into an immutable view evaluated at now, with
// gap blocks inserted between idle-separated windows. Later folds never
// mutate a snapshot already handed out.
func (e *Engine) Snapshot(now time.Time) *Snapshot {
	projects := make(map[string]*Project, len(e.projects))
	for name, project := range e.projects {
		copied := newProject(name)
		for id, sess := range project.Sessions {
			sessCopy := &Session{
				SessionId:   sess.SessionId,
				ProjectName: sess.ProjectName,
				FirstSeen:   sess.FirstSeen,
				LastSeen:    sess.LastSeen,
			}
			withGaps := sess.BlocksWithGaps(e.gapThreshold)
			sessCopy.Blocks = make([]*TokenBlock, len(withGaps))
			for i, block := range withGaps {
				sessCopy.Blocks[i] = block.clone()
			}
			copied.Sessions[id] = sessCopy
		}
		projects[name] = copied
	}

	snapshot := &Snapshot{
		Timestamp:    now,
		Projects:     projects,
		TokenLimit:   e.tokenLimit,
		GapThreshold: e.gapThreshold,
	}
	if e.pinnedStart != nil {
		pinned := *e.pinnedStart
		snapshot.PinnedStart = &pinned
	}
	return snapshot
}

// clone copies a block including its tally maps.
func (b *TokenBlock) clone() *TokenBlock {
	copied := *b
	copied.TokensByModel = copyCounts(b.TokensByModel)
	copied.AdjustedByModel = copyCounts(b.AdjustedByModel)
	copied.MessagesByModel = copyCounts(b.MessagesByModel)
	copied.Usage.ToolCallCounts = copyCounts(b.Usage.ToolCallCounts)
	return &copied
}

func copyCounts(counts map[string]int) map[string]int {
	if counts == nil {
		return nil
	}
	copied := make(map[string]int, len(counts))
	for key, value := range counts {
		copied[key] = value
	}
	return copied
}
