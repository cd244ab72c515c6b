package testutil_test

import (
	"testing"
	"time"

	"cashflow/internal/errors"
	"cashflow/internal/models"
	"cashflow/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "accounts", "categories", "transactions", "budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestUser(t, a)

	var count int64
	b.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyUSD, "250.75")
	if !account.OpeningBalance.Equal(testutil.Dec("250.75")) {
		t.Errorf("expected opening balance 250.75, got %s", account.OpeningBalance)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, account, category.ID, models.TransactionTypeExpense, "12.34", time.Now())
	if !tx.Amount.Equal(testutil.Dec("12.34")) {
		t.Errorf("expected amount 12.34, got %s", tx.Amount)
	}

	rec := testutil.CreateTestRecurringTransaction(t, db, account, category.ID, models.TransactionTypeExpense, "9.99", time.Now(), models.FrequencyTwiceMonthly)
	if !rec.IsRecurring || rec.RecurringFrequency == nil || *rec.RecurringFrequency != models.FrequencyTwiceMonthly {
		t.Errorf("expected twice_monthly recurring transaction, got %+v", rec)
	}

	var stored models.Transaction
	if err := db.First(&stored, "id = ?", tx.ID).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if !stored.Amount.Equal(testutil.Dec("12.34")) {
		t.Errorf("expected stored amount 12.34, got %s", stored.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID)
	if !budget.Amount.Equal(testutil.Dec("100")) {
		t.Errorf("expected budget amount 100, got %s", budget.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrAccountNotFound, "ACCOUNT_NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrRatesUnavailable, nil), "RATES_UNAVAILABLE")
}
