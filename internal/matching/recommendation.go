package matching

import (
	"fmt"
	"strings"
)

// topByFrequency ranks phrases by how often they occur, breaking ties by
// first appearance, and keeps at most n of them.
func topByFrequency(items []string, n int) []string {
	counts := make(map[string]int, len(items))
	order := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, seen := counts[item]; !seen {
			order = append(order, item)
		}
		counts[item]++
	}

	// Stable selection sort keeps first-seen order among equal counts.
	ranked := make([]string, len(order))
	copy(ranked, order)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// recommendation renders the tiered human-readable summary for the final
// score, quoting the most frequent strengths and concerns.
func recommendation(score float64, strengths, concerns []string) string {
	switch {
	case score >= 80:
		return fmt.Sprintf(
			"Excellent match! Strong compatibility across multiple dimensions. Key strengths: %s.",
			joinOrFallback(strengths, 3, "great overall chemistry"),
		)
	case score >= 65:
		return fmt.Sprintf(
			"Promising match with good potential. Notable strengths: %s. Areas to explore: %s.",
			joinOrFallback(strengths, 2, "solid connection"),
			joinOrFallback(concerns, 2, "communication styles"),
		)
	case score >= 50:
		return fmt.Sprintf(
			"Moderate compatibility. Some alignment in %s. Consider: %s.",
			joinOrFallback(strengths, 2, "certain areas"),
			joinOrFallback(concerns, 2, "whether core values align"),
		)
	default:
		return fmt.Sprintf(
			"Limited compatibility indicated. Consider whether %s are surmountable.",
			joinOrFallback(concerns, 3, "fundamental differences in values or communication"),
		)
	}
}

func joinOrFallback(items []string, limit int, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}
