// Package window implements the billing-window aggregation: folding usage
// events into a Project -> Session -> TokenBlock tree and deriving the
// cross-project unified window from it.
package window

import (
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/constants"
	"github.com/penwyp/go-claude-usage/internal/core/model"
)

const (
	// BlockDuration is the fixed nominal length of a billing window.
	BlockDuration = constants.WindowDuration

	// DefaultGapThreshold is the idle time after which a block stops being
	// active and a gap block may be inserted.
	DefaultGapThreshold = constants.DefaultGapThreshold
)

// BlockKind distinguishes real billing windows from synthetic gap markers.
type BlockKind int

const (
	KindNormal BlockKind = iota
	KindGap
)

func (k BlockKind) String() string {
	if k == KindGap {
		return "gap"
	}
	return "normal"
}

// TokenBlock is one five-hour billing window for one session. StartTime is
// always floored to the top of an hour and EndTime is fixed at creation;
// only ActualEndTime moves as events fold in. Gap blocks span idle periods
// instead, with EndTime marking the next block's start.
type TokenBlock struct {
	Kind          BlockKind `json:"kind"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ActualEndTime time.Time `json:"actual_end_time"`

	SessionId   string `json:"session_id"`
	ProjectName string `json:"project_name"`

	// Model is the first model folded into the block; Multiplier is its
	// quota weight, used as the fallback when no per-model breakdown exists.
	Model      string  `json:"model"`
	Multiplier float64 `json:"multiplier"`

	Usage model.TokenUsage `json:"usage"`

	// Per-family tallies accumulated at fold time.
	TokensByModel   map[string]int `json:"tokens_by_model,omitempty"`
	AdjustedByModel map[string]int `json:"adjusted_by_model,omitempty"`
	MessagesByModel map[string]int `json:"messages_by_model,omitempty"`

	Interruptions int `json:"interruptions,omitempty"`
}

// newBlock opens a billing window at the hour floor of the event timestamp.
func newBlock(event model.UsageEvent) *TokenBlock {
	start := event.Timestamp.Truncate(time.Hour)
	return &TokenBlock{
		Kind:          KindNormal,
		StartTime:     start,
		EndTime:       start.Add(BlockDuration),
		ActualEndTime: event.Timestamp,
		SessionId:     event.SessionId,
		ProjectName:   event.ProjectName,
		Model:         event.Model,
		Multiplier:    event.Multiplier,
	}
}

// fold merges one event into the block.
func (b *TokenBlock) fold(event model.UsageEvent) {
	b.Usage.Add(event.Usage)
	if event.Timestamp.After(b.ActualEndTime) {
		b.ActualEndTime = event.Timestamp
	}

	if b.TokensByModel == nil {
		b.TokensByModel = make(map[string]int)
		b.AdjustedByModel = make(map[string]int)
		b.MessagesByModel = make(map[string]int)
	}
	b.TokensByModel[event.Family] += event.Usage.Total()
	b.AdjustedByModel[event.Family] += event.Usage.AdjustedTotal(event.Multiplier)
	b.MessagesByModel[event.Family] += event.Usage.MessageCount

	if event.Interrupted {
		b.Interruptions++
	}
}

// Contains reports whether the timestamp falls inside the block's nominal
// half-open span [StartTime, EndTime). Membership is independent of
// activity.
func (b *TokenBlock) Contains(ts time.Time) bool {
	return !ts.Before(b.StartTime) && ts.Before(b.EndTime)
}

// IsActive reports whether the block saw activity within the threshold
// before now. Gap blocks are never active.
func (b *TokenBlock) IsActive(now time.Time, threshold time.Duration) bool {
	if b.Kind == KindGap {
		return false
	}
	return now.Sub(b.ActualEndTime) < threshold
}

// Overlaps applies the half-open interval test against [start, end):
// two spans overlap iff each one starts before the other ends.
func (b *TokenBlock) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// AdjustedTokens returns the quota-weighted token total: the sum of the
// per-family adjusted tallies, or raw total times the block's recorded
// multiplier when no breakdown exists.
func (b *TokenBlock) AdjustedTokens() int {
	if len(b.AdjustedByModel) > 0 {
		total := 0
		for _, adjusted := range b.AdjustedByModel {
			total += adjusted
		}
		return total
	}
	return b.Usage.AdjustedTotal(b.Multiplier)
}

// RawTokens returns the unweighted token total.
func (b *TokenBlock) RawTokens() int {
	return b.Usage.Total()
}

// Models returns the model families seen in this block, unsorted.
func (b *TokenBlock) Models() []string {
	if len(b.TokensByModel) == 0 {
		if b.Model != "" {
			return []string{b.Model}
		}
		return nil
	}
	families := make([]string, 0, len(b.TokensByModel))
	for family := range b.TokensByModel {
		families = append(families, family)
	}
	return families
}
