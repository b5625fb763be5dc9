package models

// User represents the user model in the database
type User struct {
	Base
	Name     string    `gorm:"size:50" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	IsActive bool      `gorm:"not null" json:"isActive"`
	Expenses []Expense `gorm:"foreignKey:UserID" json:"-"`
	Budgets  []Budget  `gorm:"foreignKey:UserID" json:"-"`
}
