// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"smartspend/internal/models"
	"smartspend/internal/period"
)

// sortFields lists the columns an expense listing may be ordered by.
var sortFields = map[string]bool{
	"date":      true,
	"amount":    true,
	"title":     true,
	"category":  true,
	"createdAt": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("budget_month", validateBudgetMonth)
		_ = v.RegisterValidation("budget_year", validateBudgetYear)
		_ = v.RegisterValidation("sort_field", validateSortField)
		_ = v.RegisterValidation("sort_order", validateSortOrder)
	}
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).IsValid()
}

func validateBudgetMonth(fl validator.FieldLevel) bool {
	m := fl.Field().Int()
	return m >= 1 && m <= 12
}

func validateBudgetYear(fl validator.FieldLevel) bool {
	return fl.Field().Int() >= period.MinYear
}

func validateSortField(fl validator.FieldLevel) bool {
	return sortFields[fl.Field().String()]
}

func validateSortOrder(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "asc", "desc":
		return true
	}
	return false
}
