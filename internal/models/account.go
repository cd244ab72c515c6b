package models

import "github.com/shopspring/decimal"

// Currency is an ISO 4217 code for one of the supported account currencies.
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
	CurrencyAUD Currency = "AUD"
)

// SupportedCurrencies lists every currency an account may be held in.
var SupportedCurrencies = []Currency{CurrencyCAD, CurrencyUSD, CurrencyGBP, CurrencyEUR, CurrencyAUD}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// Account represents a bank account owned by a user. The current balance is
// never stored; it is derived from the opening balance and the ledger.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	Currency       Currency        `gorm:"size:3;not null" json:"currency"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"opening_balance"`
	IsDefault      bool            `gorm:"not null;default:false" json:"is_default"`
}
