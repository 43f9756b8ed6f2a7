package model

import (
	"sort"
)

// TokenUsage holds the additive token and tool counters for one event or
// one aggregate. Merging sums every counter and unions the tool names.
type TokenUsage struct {
	InputTokens         int            `json:"input_tokens"`
	CacheCreationTokens int            `json:"cache_creation_tokens"`
	CacheReadTokens     int            `json:"cache_read_tokens"`
	OutputTokens        int            `json:"output_tokens"`
	MessageCount        int            `json:"message_count"`
	ToolCallCount       int            `json:"tool_call_count"`
	ToolCallCounts      map[string]int `json:"tool_call_counts,omitempty"`
}

// Add merges another usage into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.OutputTokens += other.OutputTokens
	u.MessageCount += other.MessageCount
	u.ToolCallCount += other.ToolCallCount

	if len(other.ToolCallCounts) > 0 {
		if u.ToolCallCounts == nil {
			u.ToolCallCounts = make(map[string]int, len(other.ToolCallCounts))
		}
		for name, count := range other.ToolCallCounts {
			u.ToolCallCounts[name] += count
		}
	}
}

// Total returns the sum of all four token counters.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.CacheCreationTokens + u.CacheReadTokens + u.OutputTokens
}

// AdjustedTotal scales the raw total by a model quota multiplier.
func (u TokenUsage) AdjustedTotal(multiplier float64) int {
	return int(float64(u.Total()) * multiplier)
}

// ToolNames returns the distinct tool names, sorted.
func (u TokenUsage) ToolNames() []string {
	if len(u.ToolCallCounts) == 0 {
		return nil
	}
	names := make([]string, 0, len(u.ToolCallCounts))
	for name := range u.ToolCallCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
