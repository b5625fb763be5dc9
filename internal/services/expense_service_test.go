package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/period"
	"smartspend/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		date := time.Date(2024, 5, 3, 12, 30, 0, 0, time.UTC)

		expense, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{
			Title:       "  Groceries  ",
			Category:    models.CategoryFood,
			Amount:      decimal.RequireFromString("42.50"),
			Description: "weekly shop",
			Date:        date,
		})
		testutil.AssertNoError(t, err)

		if expense.ID == "" {
			t.Fatal("expected expense ID")
		}
		if expense.Title != "Groceries" {
			t.Errorf("expected trimmed title, got %q", expense.Title)
		}
		if !expense.Date.Equal(date) {
			t.Errorf("expected date %v, got %v", date, expense.Date)
		}
	})

	t.Run("defaults_date_to_now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		before := time.Now().Add(-time.Second)
		expense, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{
			Title:    "Coffee",
			Category: models.CategoryFood,
			Amount:   decimal.NewFromInt(3),
		})
		testutil.AssertNoError(t, err)

		if expense.Date.Before(before) {
			t.Errorf("expected date to default to now, got %v", expense.Date)
		}
	})

	t.Run("zero_amount_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{
			Title:    "Free sample",
			Category: models.CategoryOther,
			Amount:   decimal.Zero,
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("multibyte_text_counts_characters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		description := strings.Repeat("é", 150)

		expense, err := svc.CreateExpense(ctx, user.ID, ExpenseInput{
			Title:       strings.Repeat("ü", 100),
			Category:    models.CategoryFood,
			Amount:      decimal.NewFromInt(8),
			Description: description,
		})
		testutil.AssertNoError(t, err)

		if expense.Description != description {
			t.Errorf("expected description to be stored unchanged")
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		tests := []struct {
			name string
			in   ExpenseInput
		}{
			{"empty_title", ExpenseInput{Title: "   ", Category: models.CategoryFood, Amount: decimal.NewFromInt(1)}},
			{"long_title", ExpenseInput{Title: strings.Repeat("a", 101), Category: models.CategoryFood, Amount: decimal.NewFromInt(1)}},
			{"unknown_category", ExpenseInput{Title: "x", Category: "Snacks", Amount: decimal.NewFromInt(1)}},
			{"negative_amount", ExpenseInput{Title: "x", Category: models.CategoryFood, Amount: decimal.NewFromInt(-1)}},
			{"long_description", ExpenseInput{Title: "x", Category: models.CategoryFood, Amount: decimal.NewFromInt(1), Description: strings.Repeat("d", 201)}},
			{"long_multibyte_description", ExpenseInput{Title: "x", Category: models.CategoryFood, Amount: decimal.NewFromInt(1), Description: strings.Repeat("é", 201)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateExpense(ctx, user.ID, tt.in)
				testutil.AssertAppError(t, err, "INVALID_INPUT")
			})
		}
	})
}

func TestGetUserExpenses(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "10", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "900", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "25", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "5", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, other.ID, models.CategoryFood, "99", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	t.Run("default_sort_is_date", func(t *testing.T) {
		result, err := svc.GetUserExpenses(ctx, user.ID, pagination.PageRequest{}, ExpenseFilter{}, ExpenseSort{Desc: true})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 4 {
			t.Fatalf("expected 4 expenses, got %d", result.TotalItems)
		}
		if !result.Data[0].Amount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("expected newest expense first, got %s", result.Data[0].Amount)
		}
	})

	t.Run("filter_category_and_range", func(t *testing.T) {
		food := models.CategoryFood
		from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)

		result, err := svc.GetUserExpenses(ctx, user.ID, pagination.PageRequest{},
			ExpenseFilter{Category: &food, FromDate: &from, ToDate: &to}, ExpenseSort{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 food expenses in May, got %d", result.TotalItems)
		}
	})

	t.Run("sort_by_amount_paginated", func(t *testing.T) {
		result, err := svc.GetUserExpenses(ctx, user.ID, pagination.PageRequest{Page: 2, PageSize: 2},
			ExpenseFilter{}, ExpenseSort{Field: "amount", Desc: true})
		testutil.AssertNoError(t, err)

		if result.TotalPages != 2 || len(result.Data) != 2 {
			t.Fatalf("expected page 2 of 2 with 2 items, got page %d/%d with %d",
				result.Page, result.TotalPages, len(result.Data))
		}
		if !result.Data[0].Amount.Equal(decimal.NewFromInt(10)) || !result.Data[1].Amount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("expected amounts 10 then 5, got %s then %s", result.Data[0].Amount, result.Data[1].Amount)
		}
	})

	t.Run("unknown_sort_field", func(t *testing.T) {
		_, err := svc.GetUserExpenses(ctx, user.ID, pagination.PageRequest{}, ExpenseFilter{}, ExpenseSort{Field: "password"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetExpenseByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	expense := testutil.CreateTestExpense(t, db, owner.ID, models.CategoryFood, "10", time.Now())

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetExpenseByID(ctx, owner.ID, expense.ID)
		testutil.AssertNoError(t, err)
		if got.ID != expense.ID {
			t.Errorf("expected %s, got %s", expense.ID, got.ID)
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		_, err := svc.GetExpenseByID(ctx, intruder.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "10", time.Now())
		rent := models.CategoryRent

		updated, err := svc.UpdateExpense(ctx, user.ID, expense.ID, ExpenseUpdate{
			Title:    strPtr("Deposit"),
			Category: &rent,
			Amount:   decPtr("450.75"),
		})
		testutil.AssertNoError(t, err)

		if updated.Title != "Deposit" || updated.Category != models.CategoryRent {
			t.Errorf("unexpected update result: %+v", updated)
		}
		if !updated.Amount.Equal(decimal.RequireFromString("450.75")) {
			t.Errorf("expected amount 450.75, got %s", updated.Amount)
		}
	})

	t.Run("multibyte_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "10", time.Now())

		updated, err := svc.UpdateExpense(ctx, user.ID, expense.ID, ExpenseUpdate{Description: strPtr(strings.Repeat("日", 200))})
		testutil.AssertNoError(t, err)
		if updated.Description != strings.Repeat("日", 200) {
			t.Errorf("expected 200-character description to be stored")
		}

		_, err = svc.UpdateExpense(ctx, user.ID, expense.ID, ExpenseUpdate{Description: strPtr(strings.Repeat("日", 201))})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "10", time.Now())
		bad := models.Category("Snacks")

		_, err := svc.UpdateExpense(ctx, user.ID, expense.ID, ExpenseUpdate{Category: &bad})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, owner.ID, models.CategoryFood, "10", time.Now())

		_, err := svc.UpdateExpense(ctx, intruder.ID, expense.ID, ExpenseUpdate{Title: strPtr("mine")})
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	expense := testutil.CreateTestExpense(t, db, owner.ID, models.CategoryFood, "10", time.Now())

	err := svc.DeleteExpense(ctx, intruder.ID, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteExpense(ctx, owner.ID, expense.ID))

	_, err = svc.GetExpenseByID(ctx, owner.ID, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "600", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "250", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "1000", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "1000", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	stats, err := svc.GetStats(ctx, user.ID, period.Resolve(5, 2024, time.Now(), time.UTC))
	testutil.AssertNoError(t, err)

	if !stats.TotalExpenses.Equal(decimal.NewFromInt(1850)) {
		t.Errorf("expected total 1850, got %s", stats.TotalExpenses)
	}
	food := stats.CategoryStats[models.CategoryFood]
	if !food.Total.Equal(decimal.NewFromInt(850)) || food.Count != 2 {
		t.Errorf("expected Food 850 over 2 expenses, got %s over %d", food.Total, food.Count)
	}
	if stats.Month != 5 || stats.Year != 2024 {
		t.Errorf("expected 5/2024, got %d/%d", stats.Month, stats.Year)
	}
}
