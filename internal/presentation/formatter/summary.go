package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/util"
)

// SummaryFormatter renders a human-readable usage report: unified window,
// token breakdown, per-model shares, and ingestion counters.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) Format(w io.Writer, report *Report) error {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Claude Usage Summary")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w)

	tp := util.GetTimeProvider()
	fmt.Fprintf(w, "Generated: %s\n", tp.Format(report.GeneratedAt, "2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	if report.UnifiedStart == nil {
		fmt.Fprintln(w, "No active billing window")
	} else {
		fmt.Fprintf(w, "Unified Window: %s - %s\n",
			tp.Format(*report.UnifiedStart, "2006-01-02 15:04"),
			tp.Format(*report.UnifiedEnd, "15:04"))
		fmt.Fprintf(w, "  Adjusted Tokens: %s", util.FormatNumber(report.UnifiedTokens))
		if report.TokenLimit > 0 {
			percent := float64(report.UnifiedTokens) / float64(report.TokenLimit) * 100
			fmt.Fprintf(w, " of %s (%.1f%%)", util.FormatNumber(report.TokenLimit), percent)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Messages: %s\n", util.FormatNumber(report.UnifiedMessages))
		fmt.Fprintf(w, "  Active Sessions: %d\n", report.ActiveSessions)
	}
	fmt.Fprintln(w)

	var input, output, cacheCreate, cacheRead int
	for _, row := range report.Projects {
		input += row.InputTokens
		output += row.OutputTokens
		cacheCreate += row.CacheCreation
		cacheRead += row.CacheRead
	}

	fmt.Fprintln(w, "Token Breakdown:")
	fmt.Fprintf(w, "  Input: %s\n", util.FormatNumber(input))
	fmt.Fprintf(w, "  Output: %s\n", util.FormatNumber(output))
	fmt.Fprintf(w, "  Cache Creation: %s\n", util.FormatNumber(cacheCreate))
	fmt.Fprintf(w, "  Cache Read: %s\n", util.FormatNumber(cacheRead))
	fmt.Fprintf(w, "  Total Tokens: %s\n", util.FormatNumber(report.TotalTokens))
	fmt.Fprintf(w, "  Total Cost: %s\n", util.FormatCurrency(report.TotalCost))
	fmt.Fprintln(w)

	if len(report.ByModel) > 0 {
		fmt.Fprintln(w, "Unified Window by Model:")
		for _, row := range report.ByModel {
			fmt.Fprintf(w, "  %-8s %12s tokens  %8s messages\n",
				util.DisplayModelName(row.Family),
				util.FormatNumber(row.AdjustedTokens),
				util.FormatNumber(row.Messages))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Ingestion:")
	fmt.Fprintf(w, "  Files Scanned: %d, Read: %d, Lines: %d\n",
		report.Ingest.FilesScanned, report.Ingest.FilesRead, report.Ingest.LinesRead)
	fmt.Fprintf(w, "  Parse Errors: %d, Schema Errors: %d, IO Errors: %d, Cache Discards: %d\n",
		report.Ingest.ParseErrors, report.Ingest.SchemaErrors,
		report.Ingest.IOErrors, report.Ingest.CacheDiscards)
	fmt.Fprintf(w, "  Messages: %s unique, %s duplicates skipped\n",
		util.FormatNumber(report.Dedup.UniqueMessages),
		util.FormatNumber(report.Dedup.DuplicateCount))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	return nil
}
