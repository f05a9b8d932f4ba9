package model

import "sort"

// CategoryTotal is one category's share of a spending summary.
type CategoryTotal struct {
	Category string
	Total    float64
}

// ExpenseSummary aggregates a set of expenses into the figures shown by
// the summary command: overall spend, transaction count, and per-category
// totals ordered by spend descending.
type ExpenseSummary struct {
	Total      float64
	Count      int
	Categories []CategoryTotal
}

// Percentage returns the category's share of the summary total, in percent.
// A zero-total summary yields zero for every category.
func (s *ExpenseSummary) Percentage(total float64) float64 {
	if s.Total == 0 {
		return 0
	}
	return total / s.Total * 100
}

// TopCategories returns up to n categories by descending spend.
func (s *ExpenseSummary) TopCategories(n int) []CategoryTotal {
	if n > len(s.Categories) {
		n = len(s.Categories)
	}
	return s.Categories[:n]
}

// SummarizeExpenses rolls up expenses into an ExpenseSummary. Expenses
// without a category are counted under "miscellaneous". Ties between
// categories break alphabetically so output order is stable.
func SummarizeExpenses(expenses []Attributes) *ExpenseSummary {
	summary := &ExpenseSummary{Count: len(expenses)}

	totals := make(map[string]float64)
	for _, e := range expenses {
		category := NormalizeClassificationName(e.Category)
		if category == "" {
			category = "miscellaneous"
		}
		totals[category] += e.Amount
		summary.Total += e.Amount
	}

	for category, total := range totals {
		summary.Categories = append(summary.Categories, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		if summary.Categories[i].Total != summary.Categories[j].Total {
			return summary.Categories[i].Total > summary.Categories[j].Total
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})

	return summary
}
