// Package budgeting holds the pure budget-vs-spend computations: aggregating
// expenses per category, evaluating budgets against that spend, selecting
// alerts and picking duplicate budget records to collapse.
package budgeting

import (
	"github.com/shopspring/decimal"

	"smartspend/internal/models"
	"smartspend/internal/period"
)

// Totals maps a category to the summed amount of its expenses. Categories
// without expenses have no entry.
type Totals map[models.Category]decimal.Decimal

// Get returns the total for category, or zero when absent.
func (t Totals) Get(category models.Category) decimal.Decimal {
	if v, ok := t[category]; ok {
		return v
	}
	return decimal.Zero
}

// Aggregate sums expense amounts per category. Expenses dated outside p are
// skipped, so callers may pass either a pre-filtered or a raw slice.
func Aggregate(expenses []models.Expense, p period.Period) Totals {
	totals := make(Totals)
	for i := range expenses {
		e := &expenses[i]
		if !p.Contains(e.Date) {
			continue
		}
		totals[e.Category] = totals.Get(e.Category).Add(e.Amount)
	}
	return totals
}

// CategoryStat is the spend total and expense count for one category.
type CategoryStat struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Stats is like Aggregate but also counts expenses and returns the grand
// total.
func Stats(expenses []models.Expense, p period.Period) (decimal.Decimal, map[models.Category]CategoryStat) {
	total := decimal.Zero
	stats := make(map[models.Category]CategoryStat)
	for i := range expenses {
		e := &expenses[i]
		if !p.Contains(e.Date) {
			continue
		}
		s := stats[e.Category]
		s.Total = s.Total.Add(e.Amount)
		s.Count++
		stats[e.Category] = s
		total = total.Add(e.Amount)
	}
	return total, stats
}
