package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cashflow/internal/fx"
)

type stubRates struct {
	snap *fx.Snapshot
	err  error
}

func (s *stubRates) Latest(_ context.Context) (*fx.Snapshot, error) {
	return s.snap, s.err
}

func (s *stubRates) Base() string { return "CAD" }

func setupOpsRouter(handler *OpsHandler) *gin.Engine {
	r := gin.New()
	r.GET("/ops/rates", handler.GetRates)
	return r
}

func TestOpsHandler_GetRates(t *testing.T) {
	t.Run("returns snapshot", func(t *testing.T) {
		rates := &stubRates{snap: &fx.Snapshot{
			Base:      "CAD",
			Rates:     map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.74")},
			Date:      "2026-02-10",
			FetchedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
			Source:    "exchangerate-api.com",
		}}
		r := setupOpsRouter(NewOpsHandler(rates))

		rec := doRequest(r, "GET", "/ops/rates", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["base"] != "CAD" || result["date"] != "2026-02-10" {
			t.Errorf("unexpected body: %v", result)
		}
		if result["rates"].(map[string]interface{})["USD"] != 0.74 {
			t.Errorf("unexpected rates: %v", result["rates"])
		}
	})

	t.Run("returns 503 on feed failure", func(t *testing.T) {
		r := setupOpsRouter(NewOpsHandler(&stubRates{err: errors.New("boom")}))

		rec := doRequest(r, "GET", "/ops/rates", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RATES_UNAVAILABLE")
	})

	t.Run("returns 503 without a rate source", func(t *testing.T) {
		r := setupOpsRouter(NewOpsHandler(nil))

		rec := doRequest(r, "GET", "/ops/rates", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
