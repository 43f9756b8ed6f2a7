package pricing

import (
	"context"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// CostProvider resolves per-model pricing. Implementations must be safe for
// repeated lookups with arbitrary model names.
type CostProvider interface {
	GetPricing(ctx context.Context, modelName string) (ModelPricing, error)
	Cost(ctx context.Context, modelName string, usage model.TokenUsage) (float64, error)
	ProviderName() string
}

// StaticProvider implements CostProvider from the built-in table, matching
// model names case-insensitively by family substring. It performs no I/O.
type StaticProvider struct{}

// NewStaticProvider creates the offline pricing provider.
func NewStaticProvider() CostProvider {
	return &StaticProvider{}
}

// GetPricing returns the rates for a model, falling back to default rates
// when no family matches.
func (p *StaticProvider) GetPricing(ctx context.Context, modelName string) (ModelPricing, error) {
	lower := strings.ToLower(modelName)
	for _, entry := range pricingTable {
		if strings.Contains(lower, entry.family) {
			return entry.pricing, nil
		}
	}
	return defaultPricing, nil
}

// Cost returns the USD cost of the given token counts under the model's rates.
func (p *StaticProvider) Cost(ctx context.Context, modelName string, usage model.TokenUsage) (float64, error) {
	pricing, err := p.GetPricing(ctx, modelName)
	if err != nil {
		return 0, err
	}
	return CalculateCost(pricing, usage), nil
}

// ProviderName identifies this provider in logs.
func (p *StaticProvider) ProviderName() string {
	return "static"
}
