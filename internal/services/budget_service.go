package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/ledger"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/period"
)

var hundred = decimal.NewFromInt(100)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, now: time.Now}
}

func (s *budgetService) validateBudgetInput(userID string, in BudgetInput) error {
	if in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if in.Period != models.BudgetPeriodMonthly && in.Period != models.BudgetPeriodYearly {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be monthly or yearly")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", in.CategoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateBudget creates a new budget for a category.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	if err := s.validateBudgetInput(userID, in); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Period:     in.Period,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetBudgetByID(userID, budget.ID)
}

// GetUserBudgets returns a paginated list of budgets for the user with an optional period filter.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, budgetPeriod *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	q := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if budgetPeriod != nil {
		q = q.Where("period = ?", *budgetPeriod)
	}

	result, err := pagination.Find[models.Budget](q, page, "created_at ASC", preloadCategory)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func preloadCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category")
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget replaces a budget's category, amount and period.
func (s *budgetService) UpdateBudget(userID, budgetID string, in BudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.validateBudgetInput(userID, in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"category_id": in.CategoryID,
		"amount":      in.Amount,
		"period":      in.Period,
	}
	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress calculates spending vs budget for the current period.
// Amounts are summed as recorded, without currency conversion.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var start, end time.Time
	switch budget.Period {
	case models.BudgetPeriodYearly:
		start, end = period.Year(now.Year())
	default:
		b := period.Of(now)
		start, end = b.Start, b.End
	}

	var txns []models.Transaction
	err = s.db.Where("user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date < ?",
		userID, budget.CategoryID, models.TransactionTypeExpense, start, end).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	_, spent := ledger.Totals(txns)
	percentage := decimal.Zero
	if budget.Amount.IsPositive() {
		percentage = spent.Div(budget.Amount).Mul(hundred).Round(2)
	}

	return &BudgetProgress{
		BudgetID:    budget.ID,
		Period:      string(budget.Period),
		PeriodStart: start,
		PeriodEnd:   end,
		Budgeted:    budget.Amount,
		Spent:       spent,
		Remaining:   budget.Amount.Sub(spent),
		Percentage:  percentage,
	}, nil
}
