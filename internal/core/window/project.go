package window

import (
	"time"

	"github.com/samber/lo"
)

// Project is a named collection of sessions.
type Project struct {
	Name     string              `json:"name"`
	Sessions map[string]*Session `json:"sessions"`
}

func newProject(name string) *Project {
	return &Project{
		Name:     name,
		Sessions: make(map[string]*Session),
	}
}

func (p *Project) session(sessionId string) *Session {
	sess, ok := p.Sessions[sessionId]
	if !ok {
		sess = newSession(sessionId, p.Name)
		p.Sessions[sessionId] = sess
	}
	return sess
}

// blocks returns every block across all sessions.
func (p *Project) blocks() []*TokenBlock {
	return lo.FlatMap(lo.Values(p.Sessions), func(s *Session, _ int) []*TokenBlock {
		return s.Blocks
	})
}

// windowBlocks returns the blocks that are active at now and overlap the
// half-open window [start, end).
func (p *Project) windowBlocks(start, end, now time.Time, threshold time.Duration) []*TokenBlock {
	return lo.Filter(p.blocks(), func(b *TokenBlock, _ int) bool {
		return b.IsActive(now, threshold) && b.Overlaps(start, end)
	})
}

// WindowTokens sums the adjusted tokens of this project's blocks that are
// both active and inside the window.
func (p *Project) WindowTokens(start, end, now time.Time, threshold time.Duration) int {
	return lo.SumBy(p.windowBlocks(start, end, now, threshold), func(b *TokenBlock) int {
		return b.AdjustedTokens()
	})
}

// WindowModels returns the distinct model families this project used inside
// the window.
func (p *Project) WindowModels(start, end, now time.Time, threshold time.Duration) []string {
	return lo.Uniq(lo.FlatMap(p.windowBlocks(start, end, now, threshold),
		func(b *TokenBlock, _ int) []string {
			return b.Models()
		}))
}

// WindowTools tallies tool invocations across this project's blocks inside
// the window.
func (p *Project) WindowTools(start, end, now time.Time, threshold time.Duration) map[string]int {
	tools := make(map[string]int)
	for _, block := range p.windowBlocks(start, end, now, threshold) {
		for name, count := range block.Usage.ToolCallCounts {
			tools[name] += count
		}
	}
	return tools
}

// WindowMessages sums message counts inside the window.
func (p *Project) WindowMessages(start, end, now time.Time, threshold time.Duration) int {
	return lo.SumBy(p.windowBlocks(start, end, now, threshold), func(b *TokenBlock) int {
		return b.Usage.MessageCount
	})
}

// LatestActivity returns the most recent ActualEndTime across the window's
// blocks, zero when none match.
func (p *Project) LatestActivity(start, end, now time.Time, threshold time.Duration) time.Time {
	var latest time.Time
	for _, block := range p.windowBlocks(start, end, now, threshold) {
		if block.ActualEndTime.After(latest) {
			latest = block.ActualEndTime
		}
	}
	return latest
}

// ActiveSessions returns the sessions holding at least one active block.
func (p *Project) ActiveSessions(now time.Time, threshold time.Duration) []*Session {
	return lo.Filter(lo.Values(p.Sessions), func(s *Session, _ int) bool {
		return s.ActiveBlock(now, threshold) != nil
	})
}
