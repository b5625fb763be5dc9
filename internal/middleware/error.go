package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/logger"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message, binding errors become INVALID_INPUT, and anything
// else is logged and answered with a generic internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// The last error is the most relevant in a middleware chain.
		ginErr := c.Errors.Last()
		err := ginErr.Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
					"request_id", RequestID(c),
				)
			}
			writeError(c, appErr)
			return
		}

		if ginErr.IsType(gin.ErrorTypeBind) {
			writeError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, BindErrorMessage(err)))
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestID(c),
		)
		writeError(c, apperrors.ErrInternalServer)
	}
}

func writeError(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// BindErrorMessage turns a request binding error into a client-facing
// message. Validation failures are listed per field; other decode errors get
// a generic message so that parser internals are not echoed back.
func BindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldErrorText(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldErrorText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return "Invalid email format"
	case "expense_category":
		return fmt.Sprintf("%s is not a valid category", fe.Field())
	case "budget_month":
		return fmt.Sprintf("%s must be between 1 and 12", fe.Field())
	case "budget_year":
		return fmt.Sprintf("%s must be 2020 or later", fe.Field())
	case "sort_field", "sort_order":
		return fmt.Sprintf("%s is not a supported sort option", fe.Field())
	}
	return fmt.Sprintf("%s is not valid", fe.Field())
}
