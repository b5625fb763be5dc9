package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"smartspend/internal/budgeting"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/period"
)

// WriteStrategy selects how SetBudget resolves an existing budget for the
// same (category, month, year).
type WriteStrategy string

const (
	// WriteReplace deletes every record for the slot and inserts a fresh one.
	WriteReplace WriteStrategy = "replace"
	// WriteUpdate updates the newest record in place and deletes the others.
	WriteUpdate WriteStrategy = "update"
)

// BudgetOption configures a budget service.
type BudgetOption func(*budgetService)

// WithWriteStrategy sets the SetBudget conflict strategy. Unknown values fall
// back to WriteReplace.
func WithWriteStrategy(strategy WriteStrategy) BudgetOption {
	return func(s *budgetService) {
		if strategy == WriteUpdate {
			s.strategy = WriteUpdate
		} else {
			s.strategy = WriteReplace
		}
	}
}

// WithClock overrides the clock used to find the current period.
func WithClock(now func() time.Time) BudgetOption {
	return func(s *budgetService) { s.now = now }
}

// WithLocation sets the time zone the current period is computed in.
func WithLocation(loc *time.Location) BudgetOption {
	return func(s *budgetService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// budgetService handles budget-related business logic.
type budgetService struct {
	db       *gorm.DB
	strategy WriteStrategy
	now      func() time.Time
	loc      *time.Location
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, opts ...BudgetOption) BudgetServicer {
	s := &budgetService{
		db:       db,
		strategy: WriteReplace,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetBudgets evaluates the user's budgets for p against the expenses recorded
// in p.
func (s *budgetService) GetBudgets(ctx context.Context, userID string, p period.Period) ([]budgeting.EvaluatedBudget, error) {
	db := s.db.WithContext(ctx)

	var budgets []models.Budget
	if err := db.Where("user_id = ? AND month = ? AND year = ?", userID, p.Month, p.Year).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []budgeting.EvaluatedBudget{}, nil
	}

	expenses, err := expensesInPeriod(db, userID, p)
	if err != nil {
		return nil, err
	}

	return budgeting.EvaluateAll(budgets, budgeting.Aggregate(expenses, p)), nil
}

// GetAlerts returns the alerts for the current period.
func (s *budgetService) GetAlerts(ctx context.Context, userID string) ([]budgeting.Alert, period.Period, error) {
	current := period.Current(s.now(), s.loc)

	evaluated, err := s.GetBudgets(ctx, userID, current)
	if err != nil {
		return nil, current, err
	}
	return budgeting.SelectAlerts(evaluated), current, nil
}

// ListBudgetHistory pages through every budget the user has, newest period
// first.
func (s *budgetService) ListBudgetHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[BudgetSummary], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).
		Order("year DESC").Order("month DESC").Order("category ASC").Order("updated_at DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summaries := make([]BudgetSummary, len(budgets))
	for i, b := range budgets {
		summaries[i] = BudgetSummary{Budget: b, MonthName: time.Month(b.Month).String()}
	}

	result := pagination.NewPageResponse(summaries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SetBudget stores the budget for a (category, month, year) slot so that
// exactly one record holds it afterwards. The write runs in one transaction:
// if any step fails the slot keeps its previous records.
func (s *budgetService) SetBudget(ctx context.Context, userID string, in SetBudgetInput) (*models.Budget, error) {
	threshold := models.DefaultAlertThreshold
	if in.AlertThreshold != nil {
		threshold = *in.AlertThreshold
	}
	if err := validateBudget(in.Category, in.Month, in.Year, threshold); err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	budget := &models.Budget{
		UserID:         userID,
		Category:       in.Category,
		Amount:         in.Amount,
		Month:          in.Month,
		Year:           in.Year,
		AlertThreshold: threshold,
		IsActive:       true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.strategy == WriteUpdate {
			return updateSlot(tx, budget)
		}
		return replaceSlot(tx, budget)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

func slotQuery(tx *gorm.DB, b *models.Budget) *gorm.DB {
	return tx.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
		b.UserID, b.Category, b.Month, b.Year)
}

// replaceSlot deletes every record in b's slot and inserts b.
func replaceSlot(tx *gorm.DB, b *models.Budget) error {
	if err := slotQuery(tx, b).Delete(&models.Budget{}).Error; err != nil {
		return err
	}
	return tx.Create(b).Error
}

// updateSlot overwrites the newest record in b's slot with b's values,
// deletes any other record there, and inserts b when the slot is empty. On
// return b holds the stored record.
func updateSlot(tx *gorm.DB, b *models.Budget) error {
	var existing []models.Budget
	if err := slotQuery(tx, b).Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) == 0 {
		return tx.Create(b).Error
	}

	keep := existing[0]
	for _, e := range existing[1:] {
		if budgeting.Newer(e, keep) {
			keep = e
		}
	}

	stale := make([]string, 0, len(existing)-1)
	for _, e := range existing {
		if e.ID != keep.ID {
			stale = append(stale, e.ID)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&models.Budget{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&keep).Updates(map[string]interface{}{
		"amount":          b.Amount,
		"alert_threshold": b.AlertThreshold,
		"is_active":       true,
	}).Error; err != nil {
		return err
	}

	if err := tx.Where("id = ?", keep.ID).First(b).Error; err != nil {
		return err
	}
	return nil
}

// getBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) getBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies a partial update to a budget owned by the user.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, in BudgetUpdate) (*models.Budget, error) {
	budget, err := s.getBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = *in.Amount
	}
	if in.AlertThreshold != nil {
		if !validThreshold(*in.AlertThreshold) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
		}
		updates["alert_threshold"] = *in.AlertThreshold
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.getBudgetByID(ctx, userID, budgetID)
}

// DeleteBudget permanently removes a budget owned by the user.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// ResetBudgets deletes every budget the user owns and returns how many were
// removed.
func (s *budgetService) ResetBudgets(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Budget{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// CleanupDuplicates collapses every slot holding more than one of the user's
// budgets down to its most recently updated record.
func (s *budgetService) CleanupDuplicates(ctx context.Context, userID string) (*CleanupResult, error) {
	db := s.db.WithContext(ctx)

	var budgets []models.Budget
	if err := db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	removed, err := deleteBudgets(db, budgeting.Duplicates(budgets))
	if err != nil {
		return nil, err
	}

	return &CleanupResult{
		DuplicatesRemoved: removed,
		TotalBudgets:      int64(len(budgets)) - removed,
	}, nil
}

// CleanupAllDuplicates runs the duplicate collapse across every user. Slots
// are keyed by user, so one pass over all budgets is equivalent to running
// CleanupDuplicates per user.
func (s *budgetService) CleanupAllDuplicates(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)

	var budgets []models.Budget
	if err := db.Select("id", "user_id", "category", "month", "year", "updated_at").
		Find(&budgets).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return deleteBudgets(db, budgeting.Duplicates(budgets))
}

func deleteBudgets(db *gorm.DB, stale []models.Budget) (int64, error) {
	if len(stale) == 0 {
		return 0, nil
	}
	ids := make([]string, len(stale))
	for i, b := range stale {
		ids[i] = b.ID
	}

	result := db.Where("id IN ?", ids).Delete(&models.Budget{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

func validateBudget(category models.Category, month, year, threshold int) error {
	if !category.IsValid() {
		return apperrors.ErrInvalidCategory
	}
	if !period.Valid(month, year) {
		return apperrors.ErrInvalidPeriod
	}
	if !validThreshold(threshold) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
	}
	return nil
}

func validThreshold(threshold int) bool {
	return threshold >= 0 && threshold <= 100
}
