package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"smartspend/internal/budgeting"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
	loc           *time.Location
	now           func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler. loc is the time zone the
// default period is computed in; now defaults to time.Now.
func NewBudgetHandler(
	budgetService services.BudgetServicer,
	auditService services.AuditServicer,
	loc *time.Location,
	now func() time.Time,
) *BudgetHandler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &BudgetHandler{budgetService: budgetService, auditService: auditService, loc: loc, now: now}
}

// SetBudgetRequest represents the request payload for setting a budget.
type SetBudgetRequest struct {
	Category       models.Category  `json:"category" binding:"required,expense_category"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Month          int              `json:"month" binding:"required,budget_month"`
	Year           int              `json:"year" binding:"required,budget_year"`
	AlertThreshold *int             `json:"alertThreshold" binding:"omitempty,min=0,max=100"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Amount         *decimal.Decimal `json:"amount"`
	AlertThreshold *int             `json:"alertThreshold" binding:"omitempty,min=0,max=100"`
	IsActive       *bool            `json:"isActive"`
}

// BudgetsResponse lists the evaluated budgets of one period.
type BudgetsResponse struct {
	Budgets []budgeting.EvaluatedBudget `json:"budgets"`
	Month   int                         `json:"month"`
	Year    int                         `json:"year"`
}

// AlertsResponse lists the current period's alerts.
type AlertsResponse struct {
	Alerts []budgeting.Alert `json:"alerts"`
	Month  int               `json:"month"`
	Year   int               `json:"year"`
}

// GetBudgets handles listing the evaluated budgets of a period.
// @Summary     Get budgets
// @Description Get the budgets of a month with spending, remaining amount and alert flags
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} BudgetsResponse "Evaluated budgets"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
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

	budgets, err := h.budgetService.GetBudgets(c.Request.Context(), userID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetsResponse{Budgets: budgets, Month: p.Month, Year: p.Year})
}

// SetBudget handles creating or replacing the budget of a category and month.
// @Summary     Set a budget
// @Description Set the budget for a category and month; an existing budget for the same slot is replaced
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Stored budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.SetBudget(c.Request.Context(), userID, services.SetBudgetInput{
		Category:       req.Category,
		Month:          req.Month,
		Year:           req.Year,
		Amount:         *req.Amount,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditSetBudget, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{
			"category":       budget.Category,
			"month":          budget.Month,
			"year":           budget.Year,
			"amount":         budget.Amount.String(),
			"alertThreshold": budget.AlertThreshold,
		})

	c.JSON(http.StatusCreated, gin.H{"message": "Budget saved successfully", "budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update the amount, alert threshold or active flag of a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), userID, budgetID, services.BudgetUpdate{
		Amount:         req.Amount,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	if req.AlertThreshold != nil {
		changes["alertThreshold"] = *req.AlertThreshold
	}
	if req.IsActive != nil {
		changes["isActive"] = *req.IsActive
	}
	h.auditService.Log(c.Request.Context(), userID, services.AuditUpdateBudget, "budget", budget.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"message": "Budget updated successfully", "budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Permanently delete a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditDeleteBudget, "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// ResetBudgets handles deleting every budget of the user.
// @Summary     Reset budgets
// @Description Permanently delete all of the user's budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of budgets deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/reset [delete]
func (h *BudgetHandler) ResetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.budgetService.ResetBudgets(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditResetBudgets, "budget", "", c.ClientIP(),
		map[string]interface{}{"deletedCount": deleted})

	c.JSON(http.StatusOK, gin.H{"message": "All budgets reset successfully", "deletedCount": deleted})
}

// CleanupDuplicates handles collapsing duplicate budgets of the user.
// @Summary     Clean up duplicate budgets
// @Description Keep only the most recently updated budget for each category and month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CleanupResult "Cleanup outcome"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/cleanup [post]
func (h *BudgetHandler) CleanupDuplicates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.CleanupDuplicates(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.DuplicatesRemoved > 0 {
		h.auditService.Log(c.Request.Context(), userID, services.AuditCleanupBudgets, "budget", "", c.ClientIP(),
			map[string]interface{}{"duplicatesRemoved": result.DuplicatesRemoved})
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetHistory handles listing every budget the user has set.
// @Summary     Budget history
// @Description Get a paginated list of all budgets, newest month first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number (default 1)"
// @Param       limit query int false "Items per page (default 10, max 100)"
// @Success     200 {object} pagination.PageResponse[services.BudgetSummary] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/history [get]
func (h *BudgetHandler) GetBudgetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.budgetService.ListBudgetHistory(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAlerts handles listing the budgets that are over or near their limit in
// the current month.
// @Summary     Budget alerts
// @Description Get the current month's budgets that are over budget or past their alert threshold
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AlertsResponse "Current alerts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts [get]
func (h *BudgetHandler) GetAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, p, err := h.budgetService.GetAlerts(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AlertsResponse{Alerts: alerts, Month: p.Month, Year: p.Year})
}
