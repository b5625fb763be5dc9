package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal compares a money amount by value, so "12.50" matches 12.5.
func AssertDecimal(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected amount %s, got %s", want, got)
	}
}

// AssertSingleBudget fails unless exactly one budget is stored for the user's
// (category, month, year) slot, and returns it.
func AssertSingleBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, month, year int) models.Budget {
	t.Helper()

	var budgets []models.Budget
	err := db.Where("user_id = ? AND category = ? AND month = ? AND year = ?", userID, category, month, year).
		Find(&budgets).Error
	if err != nil {
		t.Fatalf("failed to load budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected one %s budget for %d/%d, found %d", category, month, year, len(budgets))
	}
	return budgets[0]
}
