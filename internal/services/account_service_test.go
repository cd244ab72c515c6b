package services

import (
	"testing"
	"time"

	"cashflow/internal/models"
	"cashflow/internal/testutil"
)

func countDefaults(t *testing.T, svc AccountServicer, userID string) int {
	t.Helper()
	accounts, err := svc.GetUserAccounts(userID)
	testutil.AssertNoError(t, err)
	n := 0
	for _, a := range accounts {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, AccountInput{
			Name:           "  Savings ",
			Currency:       models.CurrencyUSD,
			OpeningBalance: testutil.Dec("1500.25"),
		})
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID")
		}
		if account.Name != "Savings" {
			t.Errorf("expected trimmed name Savings, got %q", account.Name)
		}
		if account.Currency != models.CurrencyUSD {
			t.Errorf("expected USD, got %s", account.Currency)
		}
		if !account.OpeningBalance.Equal(testutil.Dec("1500.25")) {
			t.Errorf("expected opening 1500.25, got %s", account.OpeningBalance)
		}
	})

	t.Run("negative_opening_balance_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, AccountInput{Name: "Overdraft", Currency: models.CurrencyCAD, OpeningBalance: testutil.Dec("-250")})
		testutil.AssertNoError(t, err)
		if !account.OpeningBalance.Equal(testutil.Dec("-250")) {
			t.Errorf("expected -250, got %s", account.OpeningBalance)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(user.ID, AccountInput{Name: " ", Currency: models.CurrencyCAD})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unsupported_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(user.ID, AccountInput{Name: "Yen", Currency: "JPY"})
		testutil.AssertAppError(t, err, "UNSUPPORTED_CURRENCY")
	})

	t.Run("new_default_replaces_old", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.CreateAccount(user.ID, AccountInput{Name: "First", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)
		second, err := svc.CreateAccount(user.ID, AccountInput{Name: "Second", Currency: models.CurrencyUSD, IsDefault: true})
		testutil.AssertNoError(t, err)

		if n := countDefaults(t, svc, user.ID); n != 1 {
			t.Fatalf("expected exactly 1 default account, got %d", n)
		}

		reloaded, err := svc.GetAccountByID(user.ID, first.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsDefault {
			t.Error("expected first account to lose default flag")
		}
		reloaded, err = svc.GetAccountByID(user.ID, second.ID)
		testutil.AssertNoError(t, err)
		if !reloaded.IsDefault {
			t.Error("expected second account to be default")
		}
	})

	t.Run("default_is_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(alice.ID, AccountInput{Name: "A", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateAccount(bob.ID, AccountInput{Name: "B", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)

		if n := countDefaults(t, svc, alice.ID); n != 1 {
			t.Errorf("expected alice to keep her default, got %d", n)
		}
	})
}

func TestGetAccountByID(t *testing.T) {
	t.Run("other_users_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID, models.CurrencyCAD, "0")

		_, err := svc.GetAccountByID(other.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("unknown_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetAccountByID(user.ID, "0192a4e2-6b1f-7c3a-9d2e-4f5a6b7c8d9e")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("replaces_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "10")

		updated, err := svc.UpdateAccount(user.ID, account.ID, AccountInput{
			Name:           "Travel",
			Currency:       models.CurrencyEUR,
			OpeningBalance: testutil.Dec("0"),
		})
		testutil.AssertNoError(t, err)

		if updated.Name != "Travel" || updated.Currency != models.CurrencyEUR {
			t.Errorf("unexpected account after update: %+v", updated)
		}
		if !updated.OpeningBalance.IsZero() {
			t.Errorf("expected zero opening balance, got %s", updated.OpeningBalance)
		}
	})

	t.Run("set_default_clears_others", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		oldDefault, err := svc.CreateAccount(user.ID, AccountInput{Name: "Main", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)
		other := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyUSD, "0")

		_, err = svc.UpdateAccount(user.ID, other.ID, AccountInput{Name: other.Name, Currency: models.CurrencyUSD, IsDefault: true})
		testutil.AssertNoError(t, err)

		if n := countDefaults(t, svc, user.ID); n != 1 {
			t.Fatalf("expected exactly 1 default, got %d", n)
		}
		reloaded, _ := svc.GetAccountByID(user.ID, oldDefault.ID)
		if reloaded.IsDefault {
			t.Error("expected previous default to be cleared")
		}
	})

	t.Run("set_default_repairs_multiple_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 3; i++ {
			acc := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "0")
			if err := db.Model(acc).UpdateColumn("is_default", true).Error; err != nil {
				t.Fatalf("failed to seed default: %v", err)
			}
		}
		if n := countDefaults(t, svc, user.ID); n != 3 {
			t.Fatalf("expected 3 seeded defaults, got %d", n)
		}

		target := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyUSD, "0")
		_, err := svc.UpdateAccount(user.ID, target.ID, AccountInput{Name: target.Name, Currency: models.CurrencyUSD, IsDefault: true})
		testutil.AssertNoError(t, err)
		if n := countDefaults(t, svc, user.ID); n != 1 {
			t.Fatalf("after update: expected exactly 1 default, got %d", n)
		}
		reloaded, err := svc.GetAccountByID(user.ID, target.ID)
		testutil.AssertNoError(t, err)
		if !reloaded.IsDefault {
			t.Error("expected updated account to be the default")
		}

		for i := 0; i < 2; i++ {
			acc := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "0")
			if err := db.Model(acc).UpdateColumn("is_default", true).Error; err != nil {
				t.Fatalf("failed to seed default: %v", err)
			}
		}
		created, err := svc.CreateAccount(user.ID, AccountInput{Name: "Fresh", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)
		if n := countDefaults(t, svc, user.ID); n != 1 {
			t.Fatalf("after create: expected exactly 1 default, got %d", n)
		}
		if !created.IsDefault {
			t.Error("expected created account to be the default")
		}
	})

	t.Run("keep_default_on_self", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, AccountInput{Name: "Main", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateAccount(user.ID, account.ID, AccountInput{Name: "Renamed", Currency: models.CurrencyCAD, IsDefault: true})
		testutil.AssertNoError(t, err)
		if !updated.IsDefault {
			t.Error("expected account to remain default")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateAccount(user.ID, "0192a4e2-6b1f-7c3a-9d2e-4f5a6b7c8d9e", AccountInput{Name: "X", Currency: models.CurrencyCAD})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("empty_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "0")

		testutil.AssertNoError(t, svc.DeleteAccount(user.ID, account.ID))

		_, err := svc.GetAccountByID(user.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("blocked_by_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "0")
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransaction(t, db, account, category.ID, models.TransactionTypeExpense, "5", time.Now())
		testutil.CreateTestTransaction(t, db, account, category.ID, models.TransactionTypeExpense, "6", time.Now())

		err := svc.DeleteAccount(user.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_HAS_TRANSACTIONS")
		if err.Error() != "Cannot delete account with 2 transactions. Delete or move the transactions first." {
			t.Errorf("unexpected message: %s", err.Error())
		}

		if _, err := svc.GetAccountByID(user.ID, account.ID); err != nil {
			t.Errorf("expected account to survive, got %v", err)
		}
	})

	t.Run("deleted_transactions_do_not_block", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyCAD, "0")
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, account, category.ID, models.TransactionTypeExpense, "5", time.Now())
		db.Delete(tx)

		testutil.AssertNoError(t, svc.DeleteAccount(user.ID, account.ID))
	})
}

func TestGetAccountBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyGBP, "100.50")
	other := testutil.CreateTestAccount(t, db, user.ID, models.CurrencyGBP, "0")
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	testutil.CreateTestTransaction(t, db, account, salary.ID, models.TransactionTypeIncome, "2000", time.Now())
	testutil.CreateTestTransaction(t, db, account, food.ID, models.TransactionTypeExpense, "45.25", time.Now())
	testutil.CreateTestTransaction(t, db, other, food.ID, models.TransactionTypeExpense, "999", time.Now())

	balance, err := svc.GetAccountBalance(user.ID, account.ID)
	testutil.AssertNoError(t, err)

	if !balance.TotalIncome.Equal(testutil.Dec("2000")) {
		t.Errorf("expected income 2000, got %s", balance.TotalIncome)
	}
	if !balance.TotalExpense.Equal(testutil.Dec("45.25")) {
		t.Errorf("expected expense 45.25, got %s", balance.TotalExpense)
	}
	if !balance.CurrentBalance.Equal(testutil.Dec("2055.25")) {
		t.Errorf("expected balance 2055.25, got %s", balance.CurrentBalance)
	}
	if balance.Currency != models.CurrencyGBP {
		t.Errorf("expected GBP, got %s", balance.Currency)
	}
}
