package util

import (
	"sort"
	"strings"
)

// DisplayModelName renders a model family name for display.
// Known families are capitalized (opus -> Opus); anything else is returned as-is.
func DisplayModelName(family string) string {
	switch strings.ToLower(family) {
	case "opus":
		return "Opus"
	case "sonnet":
		return "Sonnet"
	case "haiku":
		return "Haiku"
	case "unknown", "":
		return "Unknown"
	}
	return family
}

// GetModelOrder returns the sort order for a model family (lower number = higher priority)
func GetModelOrder(family string) int {
	lower := strings.ToLower(family)

	if strings.Contains(lower, "opus") {
		return 1
	}
	if strings.Contains(lower, "sonnet") {
		return 2
	}
	if strings.Contains(lower, "haiku") {
		return 3
	}

	return 100
}

// SortModels sorts a slice of model family names according to the canonical order
func SortModels(models []string) []string {
	sorted := make([]string, len(models))
	copy(sorted, models)

	sort.Slice(sorted, func(i, j int) bool {
		orderI := GetModelOrder(sorted[i])
		orderJ := GetModelOrder(sorted[j])

		if orderI != orderJ {
			return orderI < orderJ
		}
		return sorted[i] < sorted[j]
	})

	return sorted
}
