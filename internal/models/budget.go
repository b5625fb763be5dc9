package models

import "github.com/shopspring/decimal"

// DefaultAlertThreshold is the percentage of a budget at which it is
// considered near its limit when no threshold is given.
const DefaultAlertThreshold = 80

// Budget is a spending limit for one category in one calendar month.
// idx_budgets_key is not unique; duplicates for a key are collapsed by
// CleanupDuplicates.
type Budget struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index:idx_budgets_key,priority:1" json:"user"`
	Category       Category        `gorm:"not null;index:idx_budgets_key,priority:2" json:"category"`
	Amount         decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Month          int             `gorm:"not null;index:idx_budgets_key,priority:3" json:"month"`
	Year           int             `gorm:"not null;index:idx_budgets_key,priority:4" json:"year"`
	AlertThreshold int             `gorm:"not null" json:"alertThreshold"`
	IsActive       bool            `gorm:"not null" json:"isActive"`
}
