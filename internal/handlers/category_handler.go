package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartspend/internal/models"
)

// CategoryHandler serves the fixed set of expense categories.
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// GetCategories lists every category an expense or budget may use.
// @Summary     List categories
// @Description Get the closed set of expense categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]string "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories()})
}
