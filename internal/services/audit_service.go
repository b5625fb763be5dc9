package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"smartspend/internal/logger"
	"smartspend/internal/models"
)

// Audit actions recorded by the handlers.
const (
	AuditSetBudget      = "SET_BUDGET"
	AuditUpdateBudget   = "UPDATE_BUDGET"
	AuditDeleteBudget   = "DELETE_BUDGET"
	AuditResetBudgets   = "RESET_BUDGETS"
	AuditCleanupBudgets = "CLEANUP_BUDGETS"
	AuditCreateExpense  = "CREATE_EXPENSE"
	AuditUpdateExpense  = "UPDATE_EXPENSE"
	AuditDeleteExpense  = "DELETE_EXPENSE"
	AuditRegister       = "REGISTER"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and swallowed so that the
// audited operation is never affected.
func (s *auditService) Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	// Detached from ctx so a cancelled request still leaves its trail.
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
