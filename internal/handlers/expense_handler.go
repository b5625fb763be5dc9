package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"smartspend/internal/budgeting"
	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	budgetService  services.BudgetServicer
	auditService   services.AuditServicer
	loc            *time.Location
	now            func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler. Bare request dates and the
// default stats period are resolved in loc; now defaults to time.Now.
func NewExpenseHandler(
	expenseService services.ExpenseServicer,
	budgetService services.BudgetServicer,
	auditService services.AuditServicer,
	loc *time.Location,
	now func() time.Time,
) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ExpenseHandler{
		expenseService: expenseService,
		budgetService:  budgetService,
		auditService:   auditService,
		loc:            loc,
		now:            now,
	}
}

// CreateExpenseRequest represents the request payload for recording an expense.
type CreateExpenseRequest struct {
	Title       string           `json:"title" binding:"required,max=100"`
	Category    models.Category  `json:"category" binding:"required,expense_category"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Description string           `json:"description" binding:"max=200"`
	Date        *Date            `json:"date" swaggertype:"string"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
type UpdateExpenseRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=100"`
	Category    *models.Category `json:"category" binding:"omitempty,expense_category"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" binding:"omitempty,max=200"`
	Date        *Date            `json:"date" swaggertype:"string"`
}

// ListExpensesQuery holds the filter and sort parameters of an expense listing.
type ListExpensesQuery struct {
	pagination.PageRequest
	Category  string `form:"category" binding:"omitempty,expense_category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	SortBy    string `form:"sortBy" binding:"omitempty,sort_field"`
	SortOrder string `form:"sortOrder" binding:"omitempty,sort_order"`
}

// ExpenseListResponse is a page of expenses.
type ExpenseListResponse struct {
	Expenses    []models.Expense `json:"expenses"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// ExpenseStatsResponse summarizes a month's spending against its budgets.
type ExpenseStatsResponse struct {
	services.ExpenseStats
	BudgetAlerts []budgeting.Alert `json:"budgetAlerts"`
}

// GetExpenses handles listing the user's expenses.
// @Summary     List expenses
// @Description Get a filtered, sorted, paginated list of expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       limit     query int    false "Items per page (default 10, max 100)"
// @Param       category  query string false "Filter by category"
// @Param       startDate query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param       endDate   query string false "Latest date, inclusive (YYYY-MM-DD or RFC 3339)"
// @Param       sortBy    query string false "date, amount, title, category or createdAt (default date)"
// @Param       sortOrder query string false "asc or desc (default desc)"
// @Success     200 {object} ExpenseListResponse "Expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var filter services.ExpenseFilter
	if q.Category != "" {
		category := models.Category(q.Category)
		filter.Category = &category
	}
	if q.StartDate != "" {
		from, err := parseDate(q.StartDate, h.loc, false)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.FromDate = &from
	}
	if q.EndDate != "" {
		to, err := parseDate(q.EndDate, h.loc, true)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.ToDate = &to
	}

	sort := services.ExpenseSort{Field: q.SortBy, Desc: q.SortOrder != "asc"}

	result, err := h.expenseService.GetUserExpenses(c.Request.Context(), userID, q.PageRequest, filter, sort)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseListResponse{
		Expenses:    result.Data,
		Total:       result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
	})
}

// GetExpenseStats handles summarizing a month's spending.
// @Summary     Expense statistics
// @Description Get total and per-category spending for a month with the month's budgets in alert shape
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} ExpenseStatsResponse "Statistics"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/stats [get]
func (h *ExpenseHandler) GetExpenseStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	p, err := queryPeriod(c, h.now(), h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.expenseService.GetStats(c.Request.Context(), userID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	evaluated, err := h.budgetService.GetBudgets(c.Request.Context(), userID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts := make([]budgeting.Alert, 0, len(evaluated))
	for _, eb := range evaluated {
		if eb.IsActive {
			alerts = append(alerts, budgeting.AlertFrom(eb))
		}
	}

	c.JSON(http.StatusOK, ExpenseStatsResponse{ExpenseStats: *stats, BudgetAlerts: alerts})
}

// GetExpense handles retrieving a specific expense.
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// CreateExpense handles recording a new expense.
// @Summary     Create an expense
// @Description Record a new expense; date defaults to now
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.ExpenseInput{
		Title:       req.Title,
		Category:    req.Category,
		Amount:      *req.Amount,
		Description: req.Description,
	}
	if req.Date != nil {
		in.Date = req.Date.In(h.loc)
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "amount": expense.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"message": "Expense added successfully", "expense": expense})
}

// UpdateExpense handles updating an existing expense.
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to change"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input or expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.ExpenseUpdate{
		Title:       req.Title,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil && !req.Date.IsZero() {
		date := req.Date.In(h.loc)
		in.Date = &date
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, expenseID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditUpdateExpense, "expense", expense.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully", "expense": expense})
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]string "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditDeleteExpense, "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
