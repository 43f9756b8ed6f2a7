package window

import (
	"time"

	"github.com/samber/lo"

	"github.com/penwyp/go-claude-usage/internal/core/dedup"
	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// Snapshot is the root aggregate handed to collaborators: an immutable view
// of the Project/Session/Block tree evaluated at a fixed point in time.
// Every derived query below answers "as of Snapshot.Timestamp".
type Snapshot struct {
	Timestamp    time.Time           `json:"timestamp"`
	Projects     map[string]*Project `json:"projects"`
	PinnedStart  *time.Time          `json:"pinned_start,omitempty"`
	TokenLimit   int                 `json:"token_limit,omitempty"`
	GapThreshold time.Duration       `json:"-"`

	Dedup  dedup.Stats       `json:"dedup"`
	Ingest model.IngestStats `json:"ingest"`
}

func (s *Snapshot) allBlocks() []*TokenBlock {
	return lo.FlatMap(lo.Values(s.Projects), func(p *Project, _ int) []*TokenBlock {
		return p.blocks()
	})
}

// ActiveBlocks returns every block in the tree active at the snapshot time.
func (s *Snapshot) ActiveBlocks() []*TokenBlock {
	return lo.Filter(s.allBlocks(), func(b *TokenBlock, _ int) bool {
		return b.IsActive(s.Timestamp, s.GapThreshold)
	})
}

// UnifiedStart resolves the account-wide window anchor: a pinned override
// wins; otherwise the earliest StartTime among active blocks; nil when
// nothing is active.
func (s *Snapshot) UnifiedStart() *time.Time {
	if s.PinnedStart != nil {
		return s.PinnedStart
	}

	active := s.ActiveBlocks()
	if len(active) == 0 {
		return nil
	}

	earliest := lo.MinBy(active, func(a, b *TokenBlock) bool {
		return a.StartTime.Before(b.StartTime)
	})
	start := earliest.StartTime
	return &start
}

// UnifiedEnd is UnifiedStart plus the window length, or nil.
func (s *Snapshot) UnifiedEnd() *time.Time {
	start := s.UnifiedStart()
	if start == nil {
		return nil
	}
	end := start.Add(BlockDuration)
	return &end
}

// unifiedWindowBlocks returns the blocks that are simultaneously active and
// overlapping the unified window. A block overlapping but inactive
// contributes nothing, and vice versa.
func (s *Snapshot) unifiedWindowBlocks() []*TokenBlock {
	start := s.UnifiedStart()
	if start == nil {
		return nil
	}
	end := start.Add(BlockDuration)

	return lo.Filter(s.ActiveBlocks(), func(b *TokenBlock, _ int) bool {
		return b.Overlaps(*start, end)
	})
}

// UnifiedTokens sums adjusted tokens over the unified window's blocks.
func (s *Snapshot) UnifiedTokens() int {
	return lo.SumBy(s.unifiedWindowBlocks(), func(b *TokenBlock) int {
		return b.AdjustedTokens()
	})
}

// UnifiedTokensByModel breaks the unified total down by model family.
// Blocks without a per-family tally fall back to their recorded model name.
func (s *Snapshot) UnifiedTokensByModel() map[string]int {
	byModel := make(map[string]int)
	for _, block := range s.unifiedWindowBlocks() {
		if len(block.AdjustedByModel) == 0 {
			byModel[block.Model] += block.AdjustedTokens()
			continue
		}
		for family, adjusted := range block.AdjustedByModel {
			byModel[family] += adjusted
		}
	}
	return byModel
}

// UnifiedMessages counts messages across the unified window's blocks.
func (s *Snapshot) UnifiedMessages() int {
	return lo.SumBy(s.unifiedWindowBlocks(), func(b *TokenBlock) int {
		return b.Usage.MessageCount
	})
}

// UnifiedMessagesByModel breaks the unified message count down by family.
func (s *Snapshot) UnifiedMessagesByModel() map[string]int {
	byModel := make(map[string]int)
	for _, block := range s.unifiedWindowBlocks() {
		for family, count := range block.MessagesByModel {
			byModel[family] += count
		}
	}
	return byModel
}

// UnifiedTools tallies tool invocations across the unified window's blocks.
func (s *Snapshot) UnifiedTools() map[string]int {
	tools := make(map[string]int)
	for _, block := range s.unifiedWindowBlocks() {
		for name, count := range block.Usage.ToolCallCounts {
			tools[name] += count
		}
	}
	return tools
}

// ActiveProjects returns the projects holding at least one active block.
// Ordering is left to callers.
func (s *Snapshot) ActiveProjects() []*Project {
	return lo.Filter(lo.Values(s.Projects), func(p *Project, _ int) bool {
		return len(p.ActiveSessions(s.Timestamp, s.GapThreshold)) > 0
	})
}

// ActiveSessionCount counts sessions with an active block across the tree.
func (s *Snapshot) ActiveSessionCount() int {
	return lo.SumBy(lo.Values(s.Projects), func(p *Project) int {
		return len(p.ActiveSessions(s.Timestamp, s.GapThreshold))
	})
}

// TotalTokens is the raw token total across the whole tree, active or not.
// Gap blocks carry no usage so they add nothing.
func (s *Snapshot) TotalTokens() int {
	return lo.SumBy(s.allBlocks(), func(b *TokenBlock) int {
		return b.RawTokens()
	})
}

// TotalMessages counts messages across the whole tree.
func (s *Snapshot) TotalMessages() int {
	return lo.SumBy(s.allBlocks(), func(b *TokenBlock) int {
		return b.Usage.MessageCount
	})
}
