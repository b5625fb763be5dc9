package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"smartspend/internal/budgeting"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/period"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 200
)

// expenseSortColumns maps accepted sort fields to their column names.
var expenseSortColumns = map[string]string{
	"date":      "date",
	"amount":    "amount",
	"title":     "title",
	"category":  "category",
	"createdAt": "created_at",
}

// ExpenseSortFields lists the accepted values for ExpenseSort.Field.
func ExpenseSortFields() []string {
	return []string{"date", "amount", "title", "category", "createdAt"}
}

// expenseService handles expense-related business logic.
type expenseService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db, now: time.Now}
}

// CreateExpense records a new expense for the user.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if !in.Category.IsValid() {
		return nil, apperrors.ErrInvalidCategory
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Title:       in.Title,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date.UTC(),
	}

	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses returns a filtered, sorted page of the user's expenses.
func (s *expenseService) GetUserExpenses(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
	filter ExpenseFilter,
	sort ExpenseSort,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	column, ok := expenseSortColumns[sort.Field]
	if sort.Field == "" {
		column, ok = "date", true
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported sort field "+sort.Field)
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order(column + " " + direction).
		Order("id " + direction).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	return q
}

// GetExpenseByID retrieves an expense owned by the user.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies a partial update to an expense owned by the user.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Category != nil {
		if !in.Category.IsValid() {
			return nil, apperrors.ErrInvalidCategory
		}
		updates["category"] = *in.Category
	}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = *in.Amount
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if in.Date != nil {
		updates["date"] = in.Date.UTC()
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetExpenseByID(ctx, userID, expenseID)
}

// DeleteExpense permanently removes an expense owned by the user.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// GetExpensesInPeriod returns every expense the user recorded within p.
func (s *expenseService) GetExpensesInPeriod(ctx context.Context, userID string, p period.Period) ([]models.Expense, error) {
	return expensesInPeriod(s.db.WithContext(ctx), userID, p)
}

// GetStats totals the user's spending in p, overall and per category.
func (s *expenseService) GetStats(ctx context.Context, userID string, p period.Period) (*ExpenseStats, error) {
	expenses, err := s.GetExpensesInPeriod(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	total, byCategory := budgeting.Stats(expenses, p)
	return &ExpenseStats{
		TotalExpenses: total,
		CategoryStats: byCategory,
		Month:         p.Month,
		Year:          p.Year,
	}, nil
}

func expensesInPeriod(db *gorm.DB, userID string, p period.Period) ([]models.Expense, error) {
	var expenses []models.Expense
	err := db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, p.Start.UTC(), p.End.UTC()).
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title must be at most 100 characters")
	}
	return nil
}

// Lengths count characters, matching the request binding's max tags.
func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 200 characters")
	}
	return nil
}
