// Package formatter renders usage snapshots as JSON, a box-drawn table, a
// text summary, or CSV. All formatters consume the same flattened Report.
package formatter

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/dedup"
	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/core/pricing"
	"github.com/penwyp/go-claude-usage/internal/core/window"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// Formatter renders one report to a writer.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// Report is the render-ready view of one snapshot: per-project rollups over
// the whole tree plus the unified-window numbers and ingestion counters.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	UnifiedStart    *time.Time `json:"unified_start,omitempty"`
	UnifiedEnd      *time.Time `json:"unified_end,omitempty"`
	UnifiedTokens   int        `json:"unified_tokens"`
	UnifiedMessages int        `json:"unified_messages"`
	TokenLimit      int        `json:"token_limit,omitempty"`
	ActiveSessions  int        `json:"active_sessions"`

	Projects []ProjectRow `json:"projects"`
	ByModel  []ModelRow   `json:"by_model"`

	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`

	Dedup  dedup.Stats       `json:"dedup"`
	Ingest model.IngestStats `json:"ingest"`
}

// ProjectRow aggregates every billing window of one project.
type ProjectRow struct {
	Project        string   `json:"project"`
	Models         []string `json:"models"`
	InputTokens    int      `json:"input_tokens"`
	OutputTokens   int      `json:"output_tokens"`
	CacheCreation  int      `json:"cache_creation"`
	CacheRead      int      `json:"cache_read"`
	TotalTokens    int      `json:"total_tokens"`
	AdjustedTokens int      `json:"adjusted_tokens"`
	Messages       int      `json:"messages"`
	Cost           float64  `json:"cost"`
}

// ModelRow is one model family's share of the unified window.
type ModelRow struct {
	Family         string `json:"family"`
	AdjustedTokens int    `json:"adjusted_tokens"`
	Messages       int    `json:"messages"`
}

// BuildReport flattens a snapshot into rows. Cost is accumulated per block
// under the block's recorded model; a nil provider leaves costs at zero.
func BuildReport(ctx context.Context, snap *window.Snapshot, provider pricing.CostProvider) *Report {
	report := &Report{
		GeneratedAt:     snap.Timestamp,
		UnifiedStart:    snap.UnifiedStart(),
		UnifiedEnd:      snap.UnifiedEnd(),
		UnifiedTokens:   snap.UnifiedTokens(),
		UnifiedMessages: snap.UnifiedMessages(),
		TokenLimit:      snap.TokenLimit,
		ActiveSessions:  snap.ActiveSessionCount(),
		TotalTokens:     snap.TotalTokens(),
		Dedup:           snap.Dedup,
		Ingest:          snap.Ingest,
	}

	for name, project := range snap.Projects {
		row := ProjectRow{Project: name}
		families := make(map[string]struct{})

		for _, sess := range project.Sessions {
			for _, block := range sess.Blocks {
				if block.Kind == window.KindGap {
					continue
				}
				row.InputTokens += block.Usage.InputTokens
				row.OutputTokens += block.Usage.OutputTokens
				row.CacheCreation += block.Usage.CacheCreationTokens
				row.CacheRead += block.Usage.CacheReadTokens
				row.TotalTokens += block.RawTokens()
				row.AdjustedTokens += block.AdjustedTokens()
				row.Messages += block.Usage.MessageCount
				for _, family := range block.Models() {
					families[family] = struct{}{}
				}
				if provider != nil {
					if cost, err := provider.Cost(ctx, block.Model, block.Usage); err == nil {
						row.Cost += cost
					}
				}
			}
		}

		row.Models = util.SortModels(familyList(families))
		report.Projects = append(report.Projects, row)
		report.TotalCost += row.Cost
	}

	sort.Slice(report.Projects, func(i, j int) bool {
		return report.Projects[i].Project < report.Projects[j].Project
	})

	messagesByFamily := snap.UnifiedMessagesByModel()
	for family, adjusted := range snap.UnifiedTokensByModel() {
		report.ByModel = append(report.ByModel, ModelRow{
			Family:         family,
			AdjustedTokens: adjusted,
			Messages:       messagesByFamily[family],
		})
	}
	sort.Slice(report.ByModel, func(i, j int) bool {
		oi, oj := util.GetModelOrder(report.ByModel[i].Family), util.GetModelOrder(report.ByModel[j].Family)
		if oi != oj {
			return oi < oj
		}
		return report.ByModel[i].Family < report.ByModel[j].Family
	})

	return report
}

func familyList(set map[string]struct{}) []string {
	families := make([]string, 0, len(set))
	for family := range set {
		families = append(families, family)
	}
	return families
}
