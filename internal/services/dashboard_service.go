package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/fx"
	"cashflow/internal/ledger"
	"cashflow/internal/models"
	"cashflow/internal/period"
)

// Trend window limits, in months.
const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

// OverviewQuery selects the month for the overview. Zero Month or Year means
// the current one.
type OverviewQuery struct {
	Month     int
	Year      int
	AccountID *string
}

// AccountSummary is an account with its all-time balance in its own currency.
type AccountSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Currency       models.Currency `json:"currency"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsDefault      bool            `json:"is_default"`
}

// Overview summarises one month of activity. Totals are summed as recorded,
// without currency conversion.
type Overview struct {
	Month            int              `json:"month"`
	Year             int              `json:"year"`
	Label            string           `json:"label"`
	TotalIncome      decimal.Decimal  `json:"total_income"`
	TotalExpense     decimal.Decimal  `json:"total_expense"`
	NetBalance       decimal.Decimal  `json:"net_balance"`
	SavingsRate      decimal.Decimal  `json:"savings_rate"`
	TransactionCount int              `json:"transaction_count"`
	AccountBalances  []AccountSummary `json:"account_balances"`
}

// TrendPoint is one month of historical income and expense.
type TrendPoint struct {
	Month   string          `json:"month"`
	Start   time.Time       `json:"start"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// BreakdownQuery selects the month and transaction type for a category
// breakdown. An empty Type means expense.
type BreakdownQuery struct {
	Month     int
	Year      int
	Type      models.TransactionType
	AccountID *string
}

// CategoryAmount is one category's share of a month.
type CategoryAmount struct {
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
}

// CashAccount is one account's balance and its value in the base currency.
type CashAccount struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Currency        models.Currency `json:"currency"`
	OriginalBalance decimal.Decimal `json:"original_balance"`
	BalanceInBase   decimal.Decimal `json:"balance_in_cad"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	IsDefault       bool            `json:"is_default"`
}

// TotalCash is the sum of every account converted into the base currency.
type TotalCash struct {
	Total        decimal.Decimal `json:"total_cad"`
	Accounts     []CashAccount   `json:"accounts"`
	BaseCurrency string          `json:"base_currency"`
	RatesSource  string          `json:"rates_source"`
	LastUpdated  string          `json:"last_updated"`
}

// dashboardService computes the dashboard views from the ledger.
type dashboardService struct {
	aggregator
}

// NewDashboardService creates a new DashboardServicer. Only the total-cash
// view calls rates.
func NewDashboardService(db *gorm.DB, rates fx.RateSource, parallelism int) DashboardServicer {
	return &dashboardService{aggregator: newAggregator(db, rates, parallelism)}
}

// resolveMonth fills in the current month and year and validates the month.
func (s *dashboardService) resolveMonth(month, year int) (period.Bucket, error) {
	now := s.now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return period.Bucket{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 1 {
		return period.Bucket{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be positive")
	}
	return period.Month(year, time.Month(month)), nil
}

// rangeTransactions loads the user's transactions inside [from, to).
func (s *dashboardService) rangeTransactions(ctx context.Context, userID string, from, to time.Time, txType *models.TransactionType, accountID *string) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ? AND date >= ? AND date < ?", userID, from, to)
	if txType != nil {
		q = q.Where("type = ?", *txType)
	}
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}

	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}

// GetOverview returns income, expense and savings rate for one month plus the
// all-time balance of every account.
func (s *dashboardService) GetOverview(ctx context.Context, userID string, q OverviewQuery) (*Overview, error) {
	bucket, err := s.resolveMonth(q.Month, q.Year)
	if err != nil {
		return nil, err
	}
	if q.AccountID != nil {
		if _, err := s.listAccounts(ctx, userID, q.AccountID); err != nil {
			return nil, err
		}
	}

	txns, err := s.rangeTransactions(ctx, userID, bucket.Start, bucket.End, nil, q.AccountID)
	if err != nil {
		return nil, err
	}
	income, expense := ledger.Totals(txns)
	net := income.Sub(expense)

	savingsRate := decimal.Zero
	if income.IsPositive() {
		savingsRate = net.Div(income).Mul(hundred).Round(2)
	}

	accounts, err := s.listAccounts(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.loadLedgers(ctx, accounts)
	if err != nil {
		return nil, err
	}
	balances := make([]AccountSummary, len(ledgers))
	for i, l := range ledgers {
		balances[i] = AccountSummary{
			ID:             l.Account.ID,
			Name:           l.Account.Name,
			Currency:       l.Account.Currency,
			CurrentBalance: ledger.Balance(l.Account.OpeningBalance, l.Transactions),
			IsDefault:      l.Account.IsDefault,
		}
	}

	return &Overview{
		Month:            int(bucket.Month),
		Year:             bucket.Year,
		Label:            bucket.Label(),
		TotalIncome:      income,
		TotalExpense:     expense,
		NetBalance:       net,
		SavingsRate:      savingsRate,
		TransactionCount: len(txns),
		AccountBalances:  balances,
	}, nil
}

// GetTrends returns months of actual income and expense ending with the
// current month, oldest first. Recurring transactions are not projected.
func (s *dashboardService) GetTrends(ctx context.Context, userID string, months int, accountID *string) ([]TrendPoint, error) {
	if months == 0 {
		months = DefaultTrendMonths
	}
	if months < 1 || months > MaxTrendMonths {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24")
	}
	if accountID != nil {
		if _, err := s.listAccounts(ctx, userID, accountID); err != nil {
			return nil, err
		}
	}

	buckets := period.Trailing(s.now(), months)
	txns, err := s.rangeTransactions(ctx, userID, buckets[0].Start, buckets[len(buckets)-1].End, nil, accountID)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]models.Transaction, len(buckets))
	for _, t := range txns {
		key := period.Of(t.Date).String()
		byMonth[key] = append(byMonth[key], t)
	}

	points := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		income, expense := ledger.Totals(byMonth[b.String()])
		points[i] = TrendPoint{
			Month:   b.Label(),
			Start:   b.Start,
			Income:  income,
			Expense: expense,
			Net:     income.Sub(expense),
		}
	}
	return points, nil
}

// GetCategoryBreakdown groups one month's transactions of a type by category,
// largest first. Transactions whose category no longer exists are left out.
func (s *dashboardService) GetCategoryBreakdown(ctx context.Context, userID string, q BreakdownQuery) ([]CategoryAmount, error) {
	bucket, err := s.resolveMonth(q.Month, q.Year)
	if err != nil {
		return nil, err
	}
	txType := q.Type
	if txType == "" {
		txType = models.TransactionTypeExpense
	}
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if q.AccountID != nil {
		if _, err := s.listAccounts(ctx, userID, q.AccountID); err != nil {
			return nil, err
		}
	}

	txns, err := s.rangeTransactions(ctx, userID, bucket.Start, bucket.End, &txType, q.AccountID)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	known := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = c
	}

	sums := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if _, ok := known[t.CategoryID]; !ok {
			continue
		}
		sums[t.CategoryID] = sums[t.CategoryID].Add(t.Amount)
	}

	result := make([]CategoryAmount, 0, len(sums))
	for id, amount := range sums {
		c := known[id]
		result = append(result, CategoryAmount{
			CategoryID: id,
			Category:   c.Name,
			Amount:     amount,
			Color:      c.Color,
			Icon:       c.Icon,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Amount.Cmp(result[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// GetTotalCash converts every account's current balance into the base
// currency and sums them.
func (s *dashboardService) GetTotalCash(ctx context.Context, userID string) (*TotalCash, error) {
	accounts, err := s.listAccounts(ctx, userID, nil)
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

	total := decimal.Zero
	details := make([]CashAccount, len(ledgers))
	for i, l := range ledgers {
		balance := ledger.Balance(l.Account.OpeningBalance, l.Transactions)
		inBase, err := toBase(snap, balance, l.Account.Currency)
		if err != nil {
			return nil, err
		}
		rate, err := snap.Rate(string(l.Account.Currency))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRatesUnavailable, err)
		}
		total = total.Add(inBase)
		details[i] = CashAccount{
			ID:              l.Account.ID,
			Name:            l.Account.Name,
			Currency:        l.Account.Currency,
			OriginalBalance: balance,
			BalanceInBase:   inBase,
			ExchangeRate:    rate,
			IsDefault:       l.Account.IsDefault,
		}
	}

	return &TotalCash{
		Total:        total,
		Accounts:     details,
		BaseCurrency: snap.Base,
		RatesSource:  snap.Source,
		LastUpdated:  snap.Date,
	}, nil
}
