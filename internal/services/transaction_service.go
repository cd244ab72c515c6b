package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	accountService  AccountServicer
	categoryService CategoryServicer
	now             func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, categoryService CategoryServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		accountService:  accountService,
		categoryService: categoryService,
		now:             time.Now,
	}
}

// normalizeTransactionInput validates the input in place. The date is moved
// to UTC and the frequency is dropped for one-off transactions.
func (s *transactionService) normalizeTransactionInput(in *TransactionInput) error {
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
	}
	if in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if in.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if in.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	if in.IsRecurring {
		if in.RecurringFrequency == nil || in.RecurringFrequency.OccurrencesPerMonth() == 0 {
			return apperrors.ErrInvalidRecurrence
		}
	} else {
		in.RecurringFrequency = nil
	}

	if in.Date.IsZero() {
		in.Date = s.now()
	}
	in.Date = in.Date.UTC()
	in.Description = strings.TrimSpace(in.Description)
	return nil
}

// checkOwnership verifies that both the account and the category belong to the user.
func (s *transactionService) checkOwnership(userID string, in TransactionInput) error {
	if _, err := s.accountService.GetAccountByID(userID, in.AccountID); err != nil {
		return err
	}
	if _, err := s.categoryService.GetCategoryByID(userID, in.CategoryID); err != nil {
		return err
	}
	return nil
}

// CreateTransaction records a new transaction against one of the user's accounts.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if err := s.normalizeTransactionInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkOwnership(userID, in); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:             userID,
		AccountID:          in.AccountID,
		CategoryID:         in.CategoryID,
		Type:               in.Type,
		Amount:             in.Amount,
		Description:        in.Description,
		Date:               in.Date,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	q := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	result, err := pagination.Find[models.Transaction](q, page, "date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces every writable field of a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = transaction.Date
	}
	if err := s.normalizeTransactionInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkOwnership(userID, in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"account_id":          in.AccountID,
		"category_id":         in.CategoryID,
		"type":                in.Type,
		"amount":              in.Amount,
		"description":         in.Description,
		"date":                in.Date,
		"is_recurring":        in.IsRecurring,
		"recurring_frequency": in.RecurringFrequency,
	}
	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction. Balances are derived, so
// nothing else needs adjusting.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
