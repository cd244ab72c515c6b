package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// AccountInput carries the writable fields of an account.
type AccountInput struct {
	Name           string
	Currency       models.Currency
	OpeningBalance decimal.Decimal
	IsDefault      bool
}

// AccountBalance is the derived balance breakdown of a single account.
type AccountBalance struct {
	AccountID      string          `json:"account_id"`
	AccountName    string          `json:"account_name"`
	Currency       models.Currency `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(userID string) ([]models.Account, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, in AccountInput) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	GetAccountBalance(userID, accountID string) (*AccountBalance, error)
}

// CategoryInput carries the writable fields of a category. Empty Color and
// Icon fall back to the defaults.
type CategoryInput struct {
	Name  string
	Type  models.CategoryType
	Color string
	Icon  string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, in CategoryInput) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
}

// TransactionInput carries the writable fields of a transaction.
type TransactionInput struct {
	AccountID          string
	CategoryID         string
	Type               models.TransactionType
	Amount             decimal.Decimal
	Description        string
	Date               time.Time
	IsRecurring        bool
	RecurringFrequency *models.RecurringFrequency
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetInput carries the writable fields of a budget.
type BudgetInput struct {
	CategoryID string
	Amount     decimal.Decimal
	Period     models.BudgetPeriod
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID    string          `json:"budget_id"`
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, in BudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
}

// DashboardServicer computes the read-only dashboard views.
type DashboardServicer interface {
	GetOverview(ctx context.Context, userID string, q OverviewQuery) (*Overview, error)
	GetTrends(ctx context.Context, userID string, months int, accountID *string) ([]TrendPoint, error)
	GetCategoryBreakdown(ctx context.Context, userID string, q BreakdownQuery) ([]CategoryAmount, error)
	GetTotalCash(ctx context.Context, userID string) (*TotalCash, error)
}

// ProjectionServicer computes the forward cashflow projection.
type ProjectionServicer interface {
	GetProjections(ctx context.Context, userID string, accountID *string) (*Projection, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
