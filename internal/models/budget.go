package models

import "github.com/shopspring/decimal"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending in one category over a month or a year.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"not null" json:"period"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
