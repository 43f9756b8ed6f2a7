package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-claude-usage/internal/core/pricing"
	"github.com/penwyp/go-claude-usage/internal/core/window"
)

func TestCSVFormatterOutput(t *testing.T) {
	report := BuildReport(context.Background(), testSnapshot(time.Now().UTC()), pricing.NewStaticProvider())

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per project")

	assert.Equal(t, "Project", records[0][0])
	assert.Equal(t, "Cost (USD)", records[0][9])

	api := records[1]
	assert.Equal(t, "api", api[0])
	assert.Equal(t, "opus, sonnet", api[1])
	assert.Equal(t, "1500", api[2], "values stay machine-readable, no separators")
	assert.Equal(t, "2000", api[6])
	assert.Equal(t, "6000", api[7])

	cost, err := strconv.ParseFloat(api[9], 64)
	require.NoError(t, err)
	assert.Greater(t, cost, 0.0)

	assert.Equal(t, "web", records[2][0])
}

func TestCSVFormatterEmptyReport(t *testing.T) {
	engine := window.NewEngine(0, 0)
	report := BuildReport(context.Background(), engine.Snapshot(time.Now().UTC()), nil)

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
