package budgeting

import (
	"sort"

	"github.com/shopspring/decimal"

	"smartspend/internal/models"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// EvaluatedBudget is a budget together with the spend recorded against it in
// its period.
type EvaluatedBudget struct {
	models.Budget
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Percentage      int64           `json:"percentage"`
	IsOverBudget    bool            `json:"isOverBudget"`
	IsNearLimit     bool            `json:"isNearLimit"`
}

// Evaluate computes the status of b given spent.
//
// Percentage is spent/amount*100 rounded half up to an integer. A budget with
// amount zero is treated as disabled: percentage 0 and neither flag set.
// Remaining never goes below zero.
//
// Both flags are read from the rounded percentage, so spending 100.4% of the
// budget rounds to 100 and is not over budget.
func Evaluate(b models.Budget, spent decimal.Decimal) EvaluatedBudget {
	eb := EvaluatedBudget{
		Budget:          b,
		SpentAmount:     spent,
		RemainingAmount: decimal.Max(decimal.Zero, b.Amount.Sub(spent)),
	}

	if !b.Amount.IsPositive() {
		return eb
	}

	eb.Percentage = roundedPercentage(spent, b.Amount)
	eb.IsOverBudget = eb.Percentage > 100
	eb.IsNearLimit = eb.Percentage >= int64(b.AlertThreshold)
	return eb
}

// EvaluateAll evaluates every budget against totals, ordered by category.
func EvaluateAll(budgets []models.Budget, totals Totals) []EvaluatedBudget {
	out := make([]EvaluatedBudget, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, Evaluate(b, totals.Get(b.Category)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}

// roundedPercentage returns floor((200*spent + amount) / (2*amount)), which is
// spent/amount*100 rounded half up, computed without intermediate rounding.
func roundedPercentage(spent, amount decimal.Decimal) int64 {
	num := spent.Mul(hundred).Mul(two).Add(amount)
	q, _ := num.QuoRem(amount.Mul(two), 0)
	return q.IntPart()
}
