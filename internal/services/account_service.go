package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/ledger"
	"cashflow/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

func validateAccountInput(in *AccountInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !in.Currency.Valid() {
		return apperrors.ErrUnsupportedCurrency
	}
	return nil
}

// clearDefault unsets is_default on every account of the user except exceptID.
func clearDefault(tx *gorm.DB, userID, exceptID string) error {
	q := tx.Model(&models.Account{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Update("is_default", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateAccount creates a new account. When the account is marked default,
// the previous default is cleared in the same database transaction.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&in); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:         userID,
		Name:           in.Name,
		Currency:       in.Currency,
		OpeningBalance: in.OpeningBalance,
		IsDefault:      in.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := clearDefault(tx, userID, ""); err != nil {
				return err
			}
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetUserAccounts returns every account of the user, oldest first.
func (s *accountService) GetUserAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount replaces the writable fields of an account.
func (s *accountService) UpdateAccount(userID, accountID string, in AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&in); err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":            in.Name,
		"currency":        in.Currency,
		"opening_balance": in.OpeningBalance,
		"is_default":      in.IsDefault,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := clearDefault(tx, userID, account.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetAccountByID(userID, accountID)
}

// DeleteAccount soft-deletes an account that no transaction references.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND account_id = ?", userID, account.ID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrAccountHasTransactions,
			fmt.Sprintf("Cannot delete account with %d transactions. Delete or move the transactions first.", count))
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetAccountBalance derives the account's balance from its opening balance
// and every transaction that references it.
func (s *accountService) GetAccountBalance(userID, accountID string) (*AccountBalance, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	if err := s.db.Where("user_id = ? AND account_id = ?", userID, account.ID).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expense := ledger.Totals(txns)
	return &AccountBalance{
		AccountID:      account.ID,
		AccountName:    account.Name,
		Currency:       account.Currency,
		OpeningBalance: account.OpeningBalance,
		TotalIncome:    income,
		TotalExpense:   expense,
		CurrentBalance: ledger.Balance(account.OpeningBalance, txns),
	}, nil
}
