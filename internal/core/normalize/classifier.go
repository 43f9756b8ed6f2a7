package normalize

import "strings"

// ModelRule maps a model-name pattern to its canonical family and the
// multiplier applied when converting raw tokens into quota-adjusted tokens.
type ModelRule struct {
	Pattern    string
	Family     string
	Multiplier float64
}

// DefaultRules returns the ordered classification table. The first matching
// pattern wins, so more specific patterns belong earlier. New model names
// are a data update here, not new branching code.
func DefaultRules() []ModelRule {
	return []ModelRule{
		{Pattern: "opus", Family: "opus", Multiplier: 5.0},
		{Pattern: "sonnet", Family: "sonnet", Multiplier: 1.0},
		{Pattern: "haiku", Family: "haiku", Multiplier: 1.0},
		{Pattern: "gpt", Family: "gpt", Multiplier: 1.0},
	}
}

// Classifier normalizes free-form model names against an ordered rule table.
type Classifier struct {
	rules []ModelRule
}

// NewClassifier creates a classifier with the given rules, falling back to
// the default table when none are supplied.
func NewClassifier(rules ...ModelRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify matches the model name case-insensitively against the rule table
// and returns the canonical family plus its quota multiplier. Unrecognized
// names pass through unchanged with multiplier 1.
func (c *Classifier) Classify(model string) (string, float64) {
	lower := strings.ToLower(model)
	for _, rule := range c.rules {
		if strings.Contains(lower, rule.Pattern) {
			return rule.Family, rule.Multiplier
		}
	}
	return model, 1.0
}
