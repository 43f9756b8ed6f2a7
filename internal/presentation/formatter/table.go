package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-claude-usage/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{
			"Project", "Models", "Input", "Output",
			"Cache Create", "Cache Read", "Total", "Adjusted", "Cost (USD)",
		},
	}
}

func (f *TableFormatter) Format(w io.Writer, report *Report) error {
	rows := make([][]string, 0, len(report.Projects)+1)
	for _, row := range report.Projects {
		rows = append(rows, f.projectCells(row))
	}
	rows = append(rows, f.totalCells(report))

	widths := f.columnWidths(rows)

	f.printBorder(w, widths, "top")
	f.printRow(w, f.headers, widths)
	f.printBorder(w, widths, "middle")
	for _, cells := range rows[:len(rows)-1] {
		f.printRow(w, cells, widths)
	}
	f.printBorder(w, widths, "middle")
	f.printRow(w, rows[len(rows)-1], widths)
	f.printBorder(w, widths, "bottom")

	if report.UnifiedStart != nil {
		tp := util.GetTimeProvider()
		fmt.Fprintf(w, "Unified window: %s - %s  %s adjusted tokens",
			tp.Format(*report.UnifiedStart, "15:04"),
			tp.Format(*report.UnifiedEnd, "15:04"),
			util.FormatTokenCount(report.UnifiedTokens))
		if report.TokenLimit > 0 {
			fmt.Fprintf(w, " of %s", util.FormatTokenCount(report.TokenLimit))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (f *TableFormatter) projectCells(row ProjectRow) []string {
	displayModels := make([]string, len(row.Models))
	for i, family := range row.Models {
		displayModels[i] = util.DisplayModelName(family)
	}

	return []string{
		row.Project,
		strings.Join(displayModels, ", "),
		util.FormatNumber(row.InputTokens),
		util.FormatNumber(row.OutputTokens),
		util.FormatNumber(row.CacheCreation),
		util.FormatNumber(row.CacheRead),
		util.FormatNumber(row.TotalTokens),
		util.FormatNumber(row.AdjustedTokens),
		util.FormatCurrency(row.Cost),
	}
}

func (f *TableFormatter) totalCells(report *Report) []string {
	var input, output, cacheCreate, cacheRead, adjusted int
	for _, row := range report.Projects {
		input += row.InputTokens
		output += row.OutputTokens
		cacheCreate += row.CacheCreation
		cacheRead += row.CacheRead
		adjusted += row.AdjustedTokens
	}

	return []string{
		"Total",
		"",
		util.FormatNumber(input),
		util.FormatNumber(output),
		util.FormatNumber(cacheCreate),
		util.FormatNumber(cacheRead),
		util.FormatNumber(report.TotalTokens),
		util.FormatNumber(adjusted),
		util.FormatCurrency(report.TotalCost),
	}
}

func (f *TableFormatter) columnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, cells := range rows {
		for i, cell := range cells {
			if w := util.GetDisplayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(w io.Writer, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Fprint(w, left)
	for i, width := range widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Fprint(w, middle)
		}
	}
	fmt.Fprintln(w, right)
}

// printRow renders one row: the first two columns left-aligned, numeric
// columns right-aligned.
func (f *TableFormatter) printRow(w io.Writer, cells []string, widths []int) {
	fmt.Fprint(w, "│")
	for i, cell := range cells {
		if i <= 1 {
			fmt.Fprintf(w, " %s │", util.PadRight(cell, widths[i]))
		} else {
			fmt.Fprintf(w, " %s │", util.PadLeft(cell, widths[i]))
		}
	}
	fmt.Fprintln(w)
}
