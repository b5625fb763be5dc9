package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record owned by a user.
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1;index:idx_expenses_user_category,priority:1" json:"user"`
	Title       string          `gorm:"size:100;not null" json:"title"`
	Category    Category        `gorm:"not null;index:idx_expenses_user_category,priority:2" json:"category"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Description string          `gorm:"size:200" json:"description,omitempty"`
	Date        time.Time       `gorm:"not null;index:idx_expenses_user_date,priority:2" json:"date"`
}
