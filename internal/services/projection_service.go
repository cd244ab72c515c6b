package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashflow/internal/fx"
	"cashflow/internal/ledger"
	"cashflow/internal/models"
	"cashflow/internal/period"
)

// ProjectionMonths is the length of the forward projection, current month included.
const ProjectionMonths = 6

// MonthlyProjection is one account's projected activity for one month, in the
// account's own currency.
type MonthlyProjection struct {
	Month            string          `json:"month"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

// AccountProjection is the running projection of a single account.
type AccountProjection struct {
	AccountID          string              `json:"account_id"`
	AccountName        string              `json:"account_name"`
	Currency           models.Currency     `json:"currency"`
	CurrentBalance     decimal.Decimal     `json:"current_balance"`
	MonthlyProjections []MonthlyProjection `json:"monthly_projections"`
}

// GrandTotal sums every account's projection for one month in the base currency.
type GrandTotal struct {
	Month        string          `json:"month"`
	TotalIncome  decimal.Decimal `json:"total_income_cad"`
	TotalExpense decimal.Decimal `json:"total_expense_cad"`
	TotalBalance decimal.Decimal `json:"total_balance_cad"`
}

// ProjectionSummary sums the grand totals over the whole window.
type ProjectionSummary struct {
	TotalProjectedIncome  decimal.Decimal `json:"total_projected_income_cad"`
	TotalProjectedExpense decimal.Decimal `json:"total_projected_expense_cad"`
	ProjectedNet          decimal.Decimal `json:"projected_net_cad"`
}

// Projection is the forward cashflow view.
type Projection struct {
	Months             []string            `json:"months"`
	AccountProjections []AccountProjection `json:"account_projections"`
	GrandTotals        []GrandTotal        `json:"grand_totals"`
	Summary            ProjectionSummary   `json:"summary"`
	BaseCurrency       string              `json:"base_currency"`
}

// projectionService projects balances forward from recurring transactions.
type projectionService struct {
	aggregator
}

// NewProjectionService creates a new ProjectionServicer.
func NewProjectionService(db *gorm.DB, rates fx.RateSource, parallelism int) ProjectionServicer {
	return &projectionService{aggregator: newAggregator(db, rates, parallelism)}
}

// GetProjections projects every account (or only accountID) over the next
// ProjectionMonths months, starting with the current one.
func (s *projectionService) GetProjections(ctx context.Context, userID string, accountID *string) (*Projection, error) {
	now := s.now()
	buckets := period.Forward(now, ProjectionMonths)
	current := buckets[0]

	accounts, err := s.listAccounts(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshotFor(ctx, accounts)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.loadLedgers(ctx, accounts)
	if err != nil {
		return nil, err
	}

	result := &Projection{
		Months:             make([]string, len(buckets)),
		AccountProjections: make([]AccountProjection, len(ledgers)),
		GrandTotals:        make([]GrandTotal, len(buckets)),
		BaseCurrency:       snap.Base,
	}
	for i, b := range buckets {
		result.Months[i] = b.Label()
		result.GrandTotals[i] = GrandTotal{
			Month:        b.Label(),
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
			TotalBalance: decimal.Zero,
		}
	}

	for i, l := range ledgers {
		acct := l.Account
		proj := AccountProjection{
			AccountID:          acct.ID,
			AccountName:        acct.Name,
			Currency:           acct.Currency,
			CurrentBalance:     ledger.Balance(acct.OpeningBalance, l.Transactions),
			MonthlyProjections: make([]MonthlyProjection, len(buckets)),
		}

		running := ledger.RunningStart(acct.OpeningBalance, l.Transactions, current)
		for j, b := range buckets {
			income, expense := ledger.ProjectMonth(l.Transactions, b, current)
			running = running.Add(income).Sub(expense)
			proj.MonthlyProjections[j] = MonthlyProjection{
				Month:            b.Label(),
				Income:           income,
				Expense:          expense,
				ProjectedBalance: running,
			}

			if err := addToTotal(&result.GrandTotals[j], snap, acct.Currency, income, expense, running); err != nil {
				return nil, err
			}
		}
		result.AccountProjections[i] = proj
	}

	summary := ProjectionSummary{TotalProjectedIncome: decimal.Zero, TotalProjectedExpense: decimal.Zero}
	for _, g := range result.GrandTotals {
		summary.TotalProjectedIncome = summary.TotalProjectedIncome.Add(g.TotalIncome)
		summary.TotalProjectedExpense = summary.TotalProjectedExpense.Add(g.TotalExpense)
	}
	summary.ProjectedNet = summary.TotalProjectedIncome.Sub(summary.TotalProjectedExpense)
	result.Summary = summary

	return result, nil
}

// addToTotal converts one account-month into the base and adds it to g.
func addToTotal(g *GrandTotal, snap *fx.Snapshot, currency models.Currency, income, expense, balance decimal.Decimal) error {
	in, err := toBase(snap, income, currency)
	if err != nil {
		return err
	}
	out, err := toBase(snap, expense, currency)
	if err != nil {
		return err
	}
	bal, err := toBase(snap, balance, currency)
	if err != nil {
		return err
	}
	g.TotalIncome = g.TotalIncome.Add(in)
	g.TotalExpense = g.TotalExpense.Add(out)
	g.TotalBalance = g.TotalBalance.Add(bal)
	return nil
}
