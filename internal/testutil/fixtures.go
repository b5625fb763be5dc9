package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"smartspend/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense records an expense of amount in category on date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, category models.Category, amount string, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		Title:    fmt.Sprintf("Test Expense %d", nextID()),
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     date.UTC(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget inserts a budget row directly, bypassing the service's
// slot reconciliation so that tests can set up duplicates.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, month, year int, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:         userID,
		Category:       category,
		Amount:         decimal.RequireFromString(amount),
		Month:          month,
		Year:           year,
		AlertThreshold: models.DefaultAlertThreshold,
		IsActive:       true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestBudgetUpdatedAt is CreateTestBudget with an explicit UpdatedAt.
func CreateTestBudgetUpdatedAt(t *testing.T, db *gorm.DB, userID string, category models.Category, month, year int, amount string, updatedAt time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Base:           models.Base{CreatedAt: updatedAt.UTC(), UpdatedAt: updatedAt.UTC()},
		UserID:         userID,
		Category:       category,
		Amount:         decimal.RequireFromString(amount),
		Month:          month,
		Year:           year,
		AlertThreshold: models.DefaultAlertThreshold,
		IsActive:       true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CountBudgets returns how many budget rows the user has.
func CountBudgets(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Budget{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count budgets: %v", err)
	}
	return n
}
