package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cashflow/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a non-default account in the given currency.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, currency models.Currency, opening string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Currency:       currency,
		OpeningBalance: Dec(opening),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
		Color:  models.DefaultCategoryColor,
		Icon:   models.DefaultCategoryIcon,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a one-off transaction.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.Account, categoryID string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     account.UserID,
		AccountID:  account.ID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     Dec(amount),
		Date:       date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringTransaction creates a recurring transaction with the given frequency.
func CreateTestRecurringTransaction(t *testing.T, db *gorm.DB, account *models.Account, categoryID string, txType models.TransactionType, amount string, date time.Time, freq models.RecurringFrequency) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:             account.UserID,
		AccountID:          account.ID,
		CategoryID:         categoryID,
		Type:               txType,
		Amount:             Dec(amount),
		Date:               date.UTC(),
		IsRecurring:        true,
		RecurringFrequency: &freq,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a monthly budget of 100.00 for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     Dec("100"),
		Period:     models.BudgetPeriodMonthly,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
