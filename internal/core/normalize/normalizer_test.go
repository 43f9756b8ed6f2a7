package normalize

import (
	"testing"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLine() model.UsageLine {
	return model.UsageLine{
		Timestamp: "2025-01-09T14:30:45.123Z",
		RequestId: "req-1",
		Message: model.Message{
			Id:    "msg-1",
			Model: "claude-3-5-sonnet-20240620",
			Usage: model.Usage{
				InputTokens:              100,
				OutputTokens:             50,
				CacheCreationInputTokens: 25,
				CacheReadInputTokens:     10,
			},
		},
	}
}

func TestNormalizeValidLine(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	event, err := normalizer.Normalize(validLine(), "test-project", "session-1")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 9, 14, 30, 45, 123000000, time.UTC), event.Timestamp)
	assert.Equal(t, "test-project", event.ProjectName)
	assert.Equal(t, "session-1", event.SessionId)
	assert.Equal(t, "claude-3-5-sonnet-20240620", event.Model, "Raw model name should be preserved")
	assert.Equal(t, "sonnet", event.Family)
	assert.Equal(t, 1.0, event.Multiplier)
	assert.Equal(t, "msg-1", event.MessageId)
	assert.Equal(t, "req-1", event.RequestId)
	assert.False(t, event.Interrupted)

	assert.Equal(t, 100, event.Usage.InputTokens)
	assert.Equal(t, 50, event.Usage.OutputTokens)
	assert.Equal(t, 25, event.Usage.CacheCreationTokens)
	assert.Equal(t, 10, event.Usage.CacheReadTokens)
	assert.Equal(t, 185, event.Usage.Total())
	assert.Equal(t, 1, event.Usage.MessageCount)
}

func TestNormalizeRejections(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	tests := []struct {
		name        string
		mutate      func(*model.UsageLine)
		expectedErr error
	}{
		{
			name:        "missing timestamp",
			mutate:      func(l *model.UsageLine) { l.Timestamp = "" },
			expectedErr: ErrMissingTimestamp,
		},
		{
			name:        "unparsable timestamp",
			mutate:      func(l *model.UsageLine) { l.Timestamp = "yesterday" },
			expectedErr: ErrInvalidTimestamp,
		},
		{
			name:        "missing model",
			mutate:      func(l *model.UsageLine) { l.Message.Model = "" },
			expectedErr: ErrMissingModel,
		},
		{
			name:        "negative input tokens",
			mutate:      func(l *model.UsageLine) { l.Message.Usage.InputTokens = -1 },
			expectedErr: ErrNegativeTokens,
		},
		{
			name:        "negative cache tokens",
			mutate:      func(l *model.UsageLine) { l.Message.Usage.CacheReadInputTokens = -5 },
			expectedErr: ErrNegativeTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := validLine()
			tt.mutate(&line)

			_, err := normalizer.Normalize(line, "p", "s")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestNormalizeMissingUsageDefaultsToZero(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	line := validLine()
	line.Message.Usage = model.Usage{}

	event, err := normalizer.Normalize(line, "p", "s")
	require.NoError(t, err)
	assert.Equal(t, 0, event.Usage.Total())
	assert.Equal(t, 1, event.Usage.MessageCount)
}

func TestNormalizeToolExtraction(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	line := validLine()
	line.Message.Content = model.FlexibleContent{
		{Type: "text", Text: "working on it"},
		{Type: "tool_use", Name: "Read", Id: "tool-1"},
		{Type: "tool_use", Name: "Bash", Id: "tool-2"},
		{Type: "tool_use", Name: "Read", Id: "tool-3"},
		{Type: "tool_use", Id: "tool-4"},
	}

	event, err := normalizer.Normalize(line, "p", "s")
	require.NoError(t, err)

	assert.Equal(t, 3, event.Usage.ToolCallCount, "Nameless tool entries should be skipped")
	assert.Equal(t, map[string]int{"Read": 2, "Bash": 1}, event.Usage.ToolCallCounts)
	assert.Equal(t, []string{"Bash", "Read"}, event.Usage.ToolNames())
}

func TestNormalizeInterruptedFlag(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	line := validLine()
	line.WasInterrupted = true

	event, err := normalizer.Normalize(line, "p", "s")
	require.NoError(t, err)
	assert.True(t, event.Interrupted)
}

func TestNormalizeStripsProjectPrefixes(t *testing.T) {
	normalizer := NewNormalizer(nil, []string{"-Users-", "-home-"})

	event, err := normalizer.Normalize(validLine(), "-home-myproject", "s")
	require.NoError(t, err)
	assert.Equal(t, "myproject", event.ProjectName)
}

func TestNormalizeOpusMultiplier(t *testing.T) {
	normalizer := NewNormalizer(nil, nil)

	line := validLine()
	line.Message.Model = "claude-opus-4-20250514"

	event, err := normalizer.Normalize(line, "p", "s")
	require.NoError(t, err)
	assert.Equal(t, "opus", event.Family)
	assert.Equal(t, 5.0, event.Multiplier)
	assert.Equal(t, 925, event.Usage.AdjustedTotal(event.Multiplier),
		"185 raw tokens at 5x should adjust to 925")
}
