package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// RecurringFrequency describes how often a recurring transaction repeats.
type RecurringFrequency string

const (
	FrequencyMonthly      RecurringFrequency = "monthly"
	FrequencyTwiceMonthly RecurringFrequency = "twice_monthly"
)

// OccurrencesPerMonth returns how many times the transaction lands in one
// calendar month, or 0 for an unknown frequency.
func (f RecurringFrequency) OccurrencesPerMonth() int64 {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyTwiceMonthly:
		return 2
	}
	return 0
}

// Transaction represents a single income or expense entry in the ledger.
// Amount is always non-negative; the sign comes from Type.
type Transaction struct {
	Base
	UserID             string              `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID          string              `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID         string              `gorm:"type:uuid;not null;index" json:"category_id"`
	Type               TransactionType     `gorm:"not null" json:"type"`
	Amount             decimal.Decimal     `gorm:"type:numeric(18,2);not null" json:"amount"`
	Description        string              `json:"description"`
	Date               time.Time           `gorm:"not null;index" json:"date"`
	IsRecurring        bool                `gorm:"not null;default:false" json:"is_recurring"`
	RecurringFrequency *RecurringFrequency `gorm:"size:20" json:"recurring_frequency,omitempty"`
}
