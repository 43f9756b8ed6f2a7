// Package normalize validates raw JSONL records and converts them into typed
// usage events: timestamp parsing, model-family classification, token and
// tool extraction, and project/session identity from file paths.
package normalize

import (
	"errors"
	"fmt"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// Rejection reasons surfaced by Normalize. Callers classify these as schema
// errors and keep going; none of them aborts a file.
var (
	ErrMissingTimestamp = errors.New("missing timestamp")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrMissingModel     = errors.New("missing model")
	ErrNegativeTokens   = errors.New("negative token count")
)

// Normalizer converts raw log lines into usage events.
type Normalizer struct {
	classifier *Classifier
	prefixes   []string
}

// NewNormalizer creates a normalizer using the given classifier and the
// configured project-name prefixes to strip.
func NewNormalizer(classifier *Classifier, projectPrefixes []string) *Normalizer {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Normalizer{
		classifier: classifier,
		prefixes:   projectPrefixes,
	}
}

// Normalize validates one raw line and produces a usage event attributed to
// the given project and session. Missing token counters default to zero;
// a missing timestamp or model, an unparsable timestamp, or any negative
// token count rejects the line.
func (n *Normalizer) Normalize(line model.UsageLine, projectName, sessionId string) (model.UsageEvent, error) {
	if line.Timestamp == "" {
		return model.UsageEvent{}, ErrMissingTimestamp
	}

	timestamp, err := ParseTimestamp(line.Timestamp)
	if err != nil {
		return model.UsageEvent{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	if line.Message.Model == "" {
		return model.UsageEvent{}, ErrMissingModel
	}

	raw := line.Message.Usage
	if raw.InputTokens < 0 || raw.OutputTokens < 0 ||
		raw.CacheCreationInputTokens < 0 || raw.CacheReadInputTokens < 0 {
		return model.UsageEvent{}, ErrNegativeTokens
	}

	family, multiplier := n.classifier.Classify(line.Message.Model)

	usage := model.TokenUsage{
		InputTokens:         raw.InputTokens,
		CacheCreationTokens: raw.CacheCreationInputTokens,
		CacheReadTokens:     raw.CacheReadInputTokens,
		OutputTokens:        raw.OutputTokens,
		MessageCount:        1,
	}
	collectToolCalls(line.Message.Content, &usage)

	return model.UsageEvent{
		Timestamp:   timestamp,
		ProjectName: StripProjectPrefixes(projectName, n.prefixes),
		SessionId:   sessionId,
		Model:       line.Message.Model,
		Family:      family,
		Multiplier:  multiplier,
		MessageId:   line.Message.Id,
		RequestId:   line.RequestId,
		Interrupted: line.WasInterrupted,
		Usage:       usage,
	}, nil
}

// collectToolCalls scans the content array for tool-use entries. The same
// tool may appear multiple times per line; every named invocation counts.
// Entries without a name are skipped.
func collectToolCalls(content model.FlexibleContent, usage *model.TokenUsage) {
	for _, item := range content {
		if item.Type != "tool_use" || item.Name == "" {
			continue
		}
		if usage.ToolCallCounts == nil {
			usage.ToolCallCounts = make(map[string]int)
		}
		usage.ToolCallCounts[item.Name]++
		usage.ToolCallCount++
	}
}
