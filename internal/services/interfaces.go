package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/budgeting"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/period"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// ExpenseInput carries the fields of a new expense. A zero Date means now.
type ExpenseInput struct {
	Title       string
	Category    models.Category
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// ExpenseUpdate carries the fields to change on an expense; nil fields are
// left untouched.
type ExpenseUpdate struct {
	Title       *string
	Category    *models.Category
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	Category *models.Category
	FromDate *time.Time
	ToDate   *time.Time
}

// ExpenseSort selects the ordering of an expense listing.
type ExpenseSort struct {
	Field string
	Desc  bool
}

// ExpenseStats summarizes one period's spending.
type ExpenseStats struct {
	TotalExpenses decimal.Decimal                            `json:"totalExpenses"`
	CategoryStats map[models.Category]budgeting.CategoryStat `json:"categoryStats"`
	Month         int                                        `json:"month"`
	Year          int                                        `json:"year"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter ExpenseFilter, sort ExpenseSort) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	GetExpensesInPeriod(ctx context.Context, userID string, p period.Period) ([]models.Expense, error)
	GetStats(ctx context.Context, userID string, p period.Period) (*ExpenseStats, error)
}

// SetBudgetInput identifies a budget slot and the values to store in it.
type SetBudgetInput struct {
	Category       models.Category
	Month          int
	Year           int
	Amount         decimal.Decimal
	AlertThreshold *int
}

// BudgetUpdate carries the fields to change on a budget; nil fields are left
// untouched.
type BudgetUpdate struct {
	Amount         *decimal.Decimal
	AlertThreshold *int
	IsActive       *bool
}

// CleanupResult reports the outcome of a duplicate collapse.
type CleanupResult struct {
	DuplicatesRemoved int64 `json:"duplicatesRemoved"`
	TotalBudgets      int64 `json:"totalBudgets"`
}

// BudgetSummary is a budget listed with its month's name.
type BudgetSummary struct {
	models.Budget
	MonthName string `json:"monthName"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	GetBudgets(ctx context.Context, userID string, p period.Period) ([]budgeting.EvaluatedBudget, error)
	GetAlerts(ctx context.Context, userID string) ([]budgeting.Alert, period.Period, error)
	ListBudgetHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[BudgetSummary], error)
	SetBudget(ctx context.Context, userID string, in SetBudgetInput) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, in BudgetUpdate) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	ResetBudgets(ctx context.Context, userID string) (int64, error)
	CleanupDuplicates(ctx context.Context, userID string) (*CleanupResult, error)
	CleanupAllDuplicates(ctx context.Context) (int64, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
