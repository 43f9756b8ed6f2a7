// Package pricing provides offline cost lookup. The ingestion core never
// computes prices itself; collaborators hand a model name and token counts
// to a CostProvider and get USD back.
package pricing

import (
	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// ModelPricing defines token pricing for one model family.
type ModelPricing struct {
	Input         float64 // Per million tokens
	Output        float64 // Per million tokens
	CacheCreation float64 // Per million tokens
	CacheRead     float64 // Per million tokens
}

// pricingTable maps family substrings to USD rates. Ordered so the first
// matching family wins.
var pricingTable = []struct {
	family  string
	pricing ModelPricing
}{
	{
		family: "opus",
		pricing: ModelPricing{
			Input:         15.00,
			Output:        75.00,
			CacheCreation: 18.75,
			CacheRead:     1.50,
		},
	},
	{
		family: "sonnet",
		pricing: ModelPricing{
			Input:         3.00,
			Output:        15.00,
			CacheCreation: 3.75,
			CacheRead:     0.30,
		},
	},
	{
		family: "haiku",
		pricing: ModelPricing{
			Input:         0.80,
			Output:        4.00,
			CacheCreation: 1.00,
			CacheRead:     0.08,
		},
	},
}

// defaultPricing is applied to unrecognized models (Sonnet rates).
var defaultPricing = ModelPricing{
	Input:         3.00,
	Output:        15.00,
	CacheCreation: 3.75,
	CacheRead:     0.30,
}

// CalculateCost converts raw token counts into USD at the given rates.
func CalculateCost(pricing ModelPricing, usage model.TokenUsage) float64 {
	cost := float64(usage.InputTokens) / 1_000_000 * pricing.Input
	cost += float64(usage.OutputTokens) / 1_000_000 * pricing.Output
	cost += float64(usage.CacheCreationTokens) / 1_000_000 * pricing.CacheCreation
	cost += float64(usage.CacheReadTokens) / 1_000_000 * pricing.CacheRead
	return cost
}
