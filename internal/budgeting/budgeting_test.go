package budgeting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspend/internal/models"
	"smartspend/internal/period"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(category models.Category, amount string, date time.Time) models.Expense {
	return models.Expense{Category: category, Amount: dec(amount), Date: date}
}

func budget(category models.Category, amount string, threshold int) models.Budget {
	return models.Budget{
		Base:           models.Base{ID: string(category)},
		UserID:         "u1",
		Category:       category,
		Amount:         dec(amount),
		Month:          5,
		Year:           2024,
		AlertThreshold: threshold,
		IsActive:       true,
	}
}

var may2024 = period.Resolve(5, 2024, time.Now(), time.UTC)

func TestAggregate(t *testing.T) {
	in := may2024.Start.Add(36 * time.Hour)
	expenses := []models.Expense{
		expense(models.CategoryFood, "600", in),
		expense(models.CategoryFood, "250", may2024.End),
		expense(models.CategoryRent, "1200", may2024.Start),
		expense(models.CategoryFood, "999", may2024.Start.Add(-time.Second)),
		expense(models.CategoryTravel, "50", may2024.End.Add(time.Nanosecond)),
	}

	totals := Aggregate(expenses, may2024)

	assert.Len(t, totals, 2)
	assert.Equal(t, "850", totals.Get(models.CategoryFood).String())
	assert.Equal(t, "1200", totals.Get(models.CategoryRent).String())
	_, ok := totals[models.CategoryTravel]
	assert.False(t, ok, "categories without expenses in range are absent")
	assert.True(t, totals.Get(models.CategoryTravel).IsZero())
}

func TestAggregateIsExact(t *testing.T) {
	expenses := make([]models.Expense, 0, 1000)
	for i := 0; i < 1000; i++ {
		expenses = append(expenses, expense(models.CategoryFood, "0.1", may2024.Start))
	}

	totals := Aggregate(expenses, may2024)

	assert.True(t, totals.Get(models.CategoryFood).Equal(dec("100")))
}

func TestStats(t *testing.T) {
	expenses := []models.Expense{
		expense(models.CategoryFood, "10.50", may2024.Start),
		expense(models.CategoryFood, "4.50", may2024.Start),
		expense(models.CategoryPetrol, "30", may2024.End),
		expense(models.CategoryPetrol, "30", may2024.End.Add(time.Hour)),
	}

	total, stats := Stats(expenses, may2024)

	assert.True(t, total.Equal(dec("45")))
	require.Contains(t, stats, models.CategoryFood)
	assert.True(t, stats[models.CategoryFood].Total.Equal(dec("15")))
	assert.Equal(t, 2, stats[models.CategoryFood].Count)
	assert.Equal(t, 1, stats[models.CategoryPetrol].Count)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		threshold int
		spent     string
		percent   int64
		remaining string
		over      bool
		near      bool
	}{
		{"over implies near", "800", 80, "850", 106, "0", true, true},
		{"near limit", "800", 80, "700", 88, "100", false, true},
		{"on track", "800", 80, "400", 50, "400", false, false},
		{"exactly at threshold", "100", 80, "80", 80, "20", false, true},
		{"exactly full is not over", "100", 80, "100", 100, "0", false, true},
		{"rounds half up", "8", 100, "1", 13, "7", false, false},
		{"rounds down below half", "3", 100, "1", 33, "2", false, false},
		{"rounded to 101 is over", "1000", 100, "1005", 101, "0", true, true},
		{"rounded to 100 is not over", "1000", 100, "1004", 100, "0", false, true},
		{"zero threshold always near", "100", 0, "0", 0, "100", false, true},
		{"zero amount disabled", "0", 80, "500", 0, "0", false, false},
		{"zero amount zero spend", "0", 0, "0", 0, "0", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eb := Evaluate(budget(models.CategoryFood, tt.amount, tt.threshold), dec(tt.spent))

			assert.Equal(t, tt.percent, eb.Percentage)
			assert.True(t, eb.RemainingAmount.Equal(dec(tt.remaining)), "remaining = %s", eb.RemainingAmount)
			assert.True(t, eb.SpentAmount.Equal(dec(tt.spent)))
			assert.Equal(t, tt.over, eb.IsOverBudget)
			assert.Equal(t, tt.near, eb.IsNearLimit)
		})
	}
}

func TestEvaluateAll(t *testing.T) {
	budgets := []models.Budget{
		budget(models.CategoryRent, "1000", 80),
		budget(models.CategoryFood, "800", 80),
	}
	totals := Totals{models.CategoryFood: dec("850")}

	out := EvaluateAll(budgets, totals)

	require.Len(t, out, 2)
	assert.Equal(t, models.CategoryFood, out[0].Category)
	assert.Equal(t, int64(106), out[0].Percentage)
	assert.Equal(t, models.CategoryRent, out[1].Category)
	assert.True(t, out[1].SpentAmount.IsZero())
	assert.Equal(t, "1000", out[1].RemainingAmount.String())
}

func TestSelectAlerts(t *testing.T) {
	inactive := budget(models.CategoryTravel, "100", 80)
	inactive.IsActive = false

	evaluated := EvaluateAll([]models.Budget{
		budget(models.CategoryFood, "800", 80),
		budget(models.CategoryRent, "1000", 80),
		budget(models.CategoryPetrol, "100", 50),
		budget(models.CategoryShopping, "0", 80),
		inactive,
	}, Totals{
		models.CategoryFood:     dec("700"),
		models.CategoryRent:     dec("1100"),
		models.CategoryPetrol:   dec("95"),
		models.CategoryShopping: dec("500"),
		models.CategoryTravel:   dec("500"),
	})

	alerts := SelectAlerts(evaluated)

	require.Len(t, alerts, 3)
	assert.Equal(t, models.CategoryRent, alerts[0].Category)
	assert.True(t, alerts[0].IsOverBudget)
	assert.Equal(t, "over", alerts[0].State())
	assert.Equal(t, models.CategoryPetrol, alerts[1].Category)
	assert.Equal(t, int64(95), alerts[1].Percentage)
	assert.Equal(t, 50, alerts[1].AlertThreshold)
	assert.Equal(t, models.CategoryFood, alerts[2].Category)
	assert.Equal(t, "near", alerts[2].State())
	assert.Equal(t, "800", alerts[2].BudgetAmount.String())
	assert.Equal(t, "700", alerts[2].SpentAmount.String())
}

func TestSelectAlertsKeepsOnePerCategory(t *testing.T) {
	low := Evaluate(budget(models.CategoryFood, "1000", 80), dec("850"))
	high := Evaluate(budget(models.CategoryFood, "800", 80), dec("850"))

	alerts := SelectAlerts([]EvaluatedBudget{low, high})

	require.Len(t, alerts, 1)
	assert.Equal(t, int64(106), alerts[0].Percentage)
}

func TestSelectAlertsEmpty(t *testing.T) {
	alerts := SelectAlerts(nil)

	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestDuplicates(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	rent := func(id string, updated time.Time) models.Budget {
		b := budget(models.CategoryRent, "1000", 80)
		b.ID = id
		b.UpdatedAt = updated
		return b
	}
	food := budget(models.CategoryFood, "500", 80)
	otherMonth := rent("r4", t1)
	otherMonth.Month = 6

	stale := Duplicates([]models.Budget{rent("r1", t1), rent("r3", t3), rent("r2", t2), food, otherMonth})

	require.Len(t, stale, 2)
	assert.Equal(t, "r1", stale[0].ID)
	assert.Equal(t, "r2", stale[1].ID)
}

func TestDuplicatesTieBreaksOnID(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := budget(models.CategoryRent, "1", 80)
	a.ID, a.UpdatedAt = "0190a", at
	b := budget(models.CategoryRent, "2", 80)
	b.ID, b.UpdatedAt = "0190b", at

	stale := Duplicates([]models.Budget{b, a})

	require.Len(t, stale, 1)
	assert.Equal(t, "0190a", stale[0].ID)
	assert.Empty(t, Duplicates([]models.Budget{b}))
}
