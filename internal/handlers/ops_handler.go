package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/fx"
	"cashflow/internal/logger"
)

// OpsHandler exposes operator diagnostics behind the ops API key.
type OpsHandler struct {
	rates fx.RateSource
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(rates fx.RateSource) *OpsHandler {
	return &OpsHandler{rates: rates}
}

// RatesResponse is a freshly fetched rate snapshot.
type RatesResponse struct {
	Base      string                     `json:"base"`
	Date      string                     `json:"date"`
	Source    string                     `json:"source"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Rates     map[string]decimal.Decimal `json:"rates" swaggertype:"object,number"`
}

// GetRates fetches the current exchange rates
// @Summary     Current exchange rates
// @Description Fetch a fresh snapshot from the rate feed. Useful to check feed connectivity.
// @Tags        ops
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} RatesResponse "Rate snapshot"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /ops/rates [get]
func (h *OpsHandler) GetRates(c *gin.Context) {
	if h.rates == nil {
		respondWithError(c, apperrors.ErrRatesUnavailable)
		return
	}

	snap, err := h.rates.Latest(c.Request.Context())
	if err != nil {
		logger.Get().Warnw("rate feed check failed", "error", err)
		respondWithError(c, apperrors.ErrRatesUnavailable)
		return
	}

	c.JSON(http.StatusOK, RatesResponse{
		Base:      snap.Base,
		Date:      snap.Date,
		Source:    snap.Source,
		FetchedAt: snap.FetchedAt,
		Rates:     snap.Rates,
	})
}
