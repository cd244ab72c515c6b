// Package ledger holds the pure arithmetic over transaction sets: account
// balances and the expansion of recurring transactions into future months.
package ledger

import (
	"github.com/shopspring/decimal"

	"cashflow/internal/models"
	"cashflow/internal/period"
)

// Signed returns the transaction amount with the sign implied by its type.
func Signed(t models.Transaction) decimal.Decimal {
	if t.Type == models.TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Totals sums income and expense amounts separately.
func Totals(txns []models.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for i := range txns {
		switch txns[i].Type {
		case models.TransactionTypeIncome:
			income = income.Add(txns[i].Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(txns[i].Amount)
		}
	}
	return income, expense
}

// Balance returns opening + Σincome − Σexpense. The result does not depend on
// the order of txns.
func Balance(opening decimal.Decimal, txns []models.Transaction) decimal.Decimal {
	income, expense := Totals(txns)
	return opening.Add(income).Sub(expense)
}

// Expand returns the amount a recurring transaction contributes to bucket b.
// Non-recurring transactions and buckets before the transaction's own month
// contribute nothing.
func Expand(t models.Transaction, b period.Bucket) decimal.Decimal {
	if !t.IsRecurring || t.RecurringFrequency == nil {
		return decimal.Zero
	}
	if b.Before(period.Of(t.Date)) {
		return decimal.Zero
	}
	n := t.RecurringFrequency.OccurrencesPerMonth()
	return t.Amount.Mul(decimal.NewFromInt(n))
}

// ProjectMonth returns projected income and expense for bucket b, given the
// month the projection is anchored on.
//
// Recurring rows are replaced by their expansion for every bucket from current
// onwards, so an occurrence recorded this month is never counted twice.
// Non-recurring rows count only inside their own bucket, and only when that
// bucket is current or already elapsed.
func ProjectMonth(txns []models.Transaction, b, current period.Bucket) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	future := current.Before(b)
	for i := range txns {
		t := txns[i]
		var amount decimal.Decimal
		switch {
		case t.IsRecurring && !b.Before(current):
			amount = Expand(t, b)
		case t.IsRecurring:
			if b.Contains(t.Date) {
				amount = t.Amount
			}
		case !future && b.Contains(t.Date):
			amount = t.Amount
		default:
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			income = income.Add(amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(amount)
		}
	}
	return income, expense
}

// RunningStart returns the balance carried into bucket b: opening plus every
// transaction dated before b starts.
func RunningStart(opening decimal.Decimal, txns []models.Transaction, b period.Bucket) decimal.Decimal {
	bal := opening
	for i := range txns {
		if txns[i].Date.UTC().Before(b.Start) {
			bal = bal.Add(Signed(txns[i]))
		}
	}
	return bal
}
