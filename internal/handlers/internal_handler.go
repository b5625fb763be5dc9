package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartspend/internal/logger"
	"smartspend/internal/services"
)

// InternalHandler serves maintenance endpoints guarded by the internal API key.
type InternalHandler struct {
	budgetService services.BudgetServicer
}

// NewInternalHandler creates a new InternalHandler.
func NewInternalHandler(budgetService services.BudgetServicer) *InternalHandler {
	return &InternalHandler{budgetService: budgetService}
}

// CleanupAllBudgets collapses duplicate budgets for every user.
// @Summary     Clean up duplicate budgets for all users
// @Tags        internal
// @Produce     json
// @Security    APIKeyAuth
// @Success     200 {object} map[string]int64 "Number of duplicates removed"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Internal endpoints not configured"
// @Router      /internal/budgets/cleanup [post]
func (h *InternalHandler) CleanupAllBudgets(c *gin.Context) {
	removed, err := h.budgetService.CleanupAllDuplicates(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Named("maintenance").Infow("budget cleanup", "duplicates_removed", removed)

	c.JSON(http.StatusOK, gin.H{"duplicatesRemoved": removed})
}
