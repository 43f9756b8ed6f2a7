package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	headers := []string{
		"Project", "Models", "Input", "Output",
		"Cache Create", "Cache Read", "Total Tokens", "Adjusted Tokens",
		"Messages", "Cost (USD)",
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, row := range report.Projects {
		record := []string{
			row.Project,
			strings.Join(row.Models, ", "),
			fmt.Sprintf("%d", row.InputTokens),
			fmt.Sprintf("%d", row.OutputTokens),
			fmt.Sprintf("%d", row.CacheCreation),
			fmt.Sprintf("%d", row.CacheRead),
			fmt.Sprintf("%d", row.TotalTokens),
			fmt.Sprintf("%d", row.AdjustedTokens),
			fmt.Sprintf("%d", row.Messages),
			fmt.Sprintf("%.2f", row.Cost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
