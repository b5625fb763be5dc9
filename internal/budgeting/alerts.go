package budgeting

import (
	"sort"

	"github.com/shopspring/decimal"

	"smartspend/internal/models"
)

// Alert describes a budget that needs the user's attention.
type Alert struct {
	Category       models.Category `json:"category"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount"`
	SpentAmount    decimal.Decimal `json:"spentAmount"`
	Percentage     int64           `json:"percentage"`
	IsOverBudget   bool            `json:"isOverBudget"`
	IsNearLimit    bool            `json:"isNearLimit"`
	AlertThreshold int             `json:"alertThreshold"`
}

// State returns "over" or "near", the level an alert was raised at.
func (a Alert) State() string {
	if a.IsOverBudget {
		return "over"
	}
	return "near"
}

// AlertFrom projects an evaluated budget onto the alert shape.
func AlertFrom(eb EvaluatedBudget) Alert {
	return Alert{
		Category:       eb.Category,
		BudgetAmount:   eb.Amount,
		SpentAmount:    eb.SpentAmount,
		Percentage:     eb.Percentage,
		IsOverBudget:   eb.IsOverBudget,
		IsNearLimit:    eb.IsNearLimit,
		AlertThreshold: eb.AlertThreshold,
	}
}

// SelectAlerts keeps the active budgets that are over or near their limit.
// Each category appears at most once, keeping the higher percentage. Alerts
// are ordered over-budget first, then by percentage descending, then by
// category.
func SelectAlerts(evaluated []EvaluatedBudget) []Alert {
	byCategory := make(map[models.Category]Alert)
	for _, eb := range evaluated {
		if !eb.IsActive || !(eb.IsOverBudget || eb.IsNearLimit) {
			continue
		}
		a := AlertFrom(eb)
		if prev, ok := byCategory[a.Category]; ok && prev.Percentage >= a.Percentage {
			continue
		}
		byCategory[a.Category] = a
	}

	alerts := make([]Alert, 0, len(byCategory))
	for _, a := range byCategory {
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].IsOverBudget != alerts[j].IsOverBudget {
			return alerts[i].IsOverBudget
		}
		if alerts[i].Percentage != alerts[j].Percentage {
			return alerts[i].Percentage > alerts[j].Percentage
		}
		return alerts[i].Category < alerts[j].Category
	})
	return alerts
}
