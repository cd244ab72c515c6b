package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.TransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID string, in services.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, page.Normalized(), 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{
					Base:               models.Base{ID: testTxnID},
					UserID:             userID,
					AccountID:          in.AccountID,
					CategoryID:         in.CategoryID,
					Type:               in.Type,
					Amount:             in.Amount,
					Date:               in.Date,
					IsRecurring:        in.IsRecurring,
					RecurringFrequency: in.RecurringFrequency,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{
			"account_id":"`+testAccountID+`",
			"category_id":"`+testCatID+`",
			"type":"income",
			"amount":2500.50,
			"date":"2026-02-15",
			"is_recurring":true,
			"recurring_frequency":"twice_monthly"
		}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(decimal.RequireFromString("2500.5")) {
			t.Errorf("expected amount 2500.5, got %s", got.Amount)
		}
		if !got.Date.Equal(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected 2026-02-15, got %s", got.Date)
		}
		if got.RecurringFrequency == nil || *got.RecurringFrequency != models.FrequencyTwiceMonthly {
			t.Errorf("expected twice_monthly, got %v", got.RecurringFrequency)
		}
		txn := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if txn["recurring_frequency"] != "twice_monthly" {
			t.Errorf("unexpected transaction: %v", txn)
		}
	})

	t.Run("accepts a zero amount and leaves date unset", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"account_id":"`+testAccountID+`","category_id":"`+testCatID+`","type":"expense","amount":0}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Date.IsZero() {
			t.Errorf("expected zero date for the service to default, got %s", got.Date)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"negative amount", `{"account_id":"` + testAccountID + `","category_id":"` + testCatID + `","type":"expense","amount":-5}`},
		{"invalid type", `{"account_id":"` + testAccountID + `","category_id":"` + testCatID + `","type":"transfer","amount":5}`},
		{"missing account", `{"category_id":"` + testCatID + `","type":"expense","amount":5}`},
		{"non-uuid category", `{"account_id":"` + testAccountID + `","category_id":"7","type":"expense","amount":5}`},
		{"unknown frequency", `{"account_id":"` + testAccountID + `","category_id":"` + testCatID + `","type":"expense","amount":5,"is_recurring":true,"recurring_frequency":"weekly"}`},
		{"bad date", `{"account_id":"` + testAccountID + `","category_id":"` + testCatID + `","type":"expense","amount":5,"date":"15/02/2026"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 400 when recurring has no frequency", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, _ services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrInvalidRecurrence
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"account_id":"`+testAccountID+`","category_id":"`+testCatID+`","type":"expense","amount":5,"is_recurring":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_RECURRENCE")
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses pagination and filters", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage = page
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{{Base: models.Base{ID: testTxnID}}}, page, 1)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?page=2&page_size=10&type=expense&account_id="+testAccountID+
			"&category_id="+testCatID+"&start_date=2026-01-01&end_date=2026-01-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page: %+v", gotPage)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", gotFilter.Type)
		}
		if gotFilter.AccountID == nil || *gotFilter.AccountID != testAccountID {
			t.Errorf("expected account filter, got %v", gotFilter.AccountID)
		}
		if gotFilter.CategoryID == nil || *gotFilter.CategoryID != testCatID {
			t.Errorf("expected category filter, got %v", gotFilter.CategoryID)
		}
		if gotFilter.FromDate == nil || !gotFilter.FromDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from date: %v", gotFilter.FromDate)
		}
		wantTo := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		if gotFilter.ToDate == nil || !gotFilter.ToDate.Equal(wantTo) {
			t.Errorf("expected end date to cover the whole day, got %v", gotFilter.ToDate)
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) {
			t.Errorf("expected total_items 1, got %v", result["total_items"])
		}
	})

	t.Run("accepts from_date and to_date aliases", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, page.Normalized(), 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?from_date=2026-01-01T00:00:00Z&to_date=2026-01-10T12:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotFilter.FromDate == nil || gotFilter.ToDate == nil {
			t.Fatal("expected both dates to be set")
		}
		if !gotFilter.ToDate.Equal(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("timestamps must not be extended, got %v", gotFilter.ToDate)
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{"page_size over limit", "?page_size=500"},
		{"invalid type", "?type=transfer"},
		{"invalid account", "?account_id=12"},
		{"invalid date", "?start_date=yesterday"},
		{"inverted range", "?start_date=2026-02-01&end_date=2026-01-01"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	txSvc := &mockTransactionService{
		getTransactionByIDFn: func(_, _ string) (*models.Transaction, error) {
			return nil, apperrors.ErrTransactionNotFound
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/transactions/"+testTxnID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	var gotID string
	var got services.TransactionInput
	txSvc := &mockTransactionService{
		updateTransactionFn: func(_, transactionID string, in services.TransactionInput) (*models.Transaction, error) {
			gotID = transactionID
			got = in
			return &models.Transaction{Base: models.Base{ID: transactionID}, Amount: in.Amount}, nil
		},
	}
	audit := &mockAuditService{}
	r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

	rec := doRequest(r, "PUT", "/transactions/"+testTxnID,
		`{"account_id":"`+testAccountID+`","category_id":"`+testCatID+`","type":"expense","amount":42.1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != testTxnID || !got.Amount.Equal(decimal.RequireFromString("42.1")) {
		t.Errorf("unexpected update: id=%s in=%+v", gotID, got)
	}
	if len(audit.entries) != 1 || audit.entries[0].action != "UPDATE_TRANSACTION" {
		t.Errorf("expected UPDATE_TRANSACTION audit entry, got %v", audit.entries)
	}
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/"+testTxnID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != "Transaction deleted successfully" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ string) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/"+testTxnID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
