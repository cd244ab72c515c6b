package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
	"cashflow/internal/services"
)

// DashboardHandler serves the read-only dashboard views.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// monthQuery reads the month, year and account_id parameters shared by the
// monthly views. Zero month or year selects the current one.
func monthQuery(c *gin.Context) (month, year int, accountID *string, err error) {
	if month, err = intQuery(c, "month"); err != nil {
		return 0, 0, nil, err
	}
	if year, err = intQuery(c, "year"); err != nil {
		return 0, 0, nil, err
	}
	accountID, err = optionalUUIDQuery(c, "account_id")
	return month, year, accountID, err
}

// GetOverview handles the monthly overview
// @Summary     Monthly overview
// @Description Income, expense, net and savings rate for one month, plus every account's current balance. Amounts are not converted.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month      query int    false "Month 1-12 (default current)"
// @Param       year       query int    false "Year (default current)"
// @Param       account_id query string false "Limit income and expense to one account"
// @Success     200 {object} services.Overview "Overview"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, accountID, err := monthQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.dashboardService.GetOverview(c.Request.Context(), userID,
		services.OverviewQuery{Month: month, Year: year, AccountID: accountID})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetTrends handles the monthly trend series
// @Summary     Monthly trends
// @Description Actual income and expense per month, oldest first, ending with the current month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       months     query int    false "Number of months, 1-24 (default 6)"
// @Param       account_id query string false "Limit to one account"
// @Success     200 {array}  services.TrendPoint "Trend points"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /dashboard/trends [get]
func (h *DashboardHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := intQuery(c, "months")
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := optionalUUIDQuery(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	points, err := h.dashboardService.GetTrends(c.Request.Context(), userID, months, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

// GetCategoryBreakdown handles per-category totals for one month
// @Summary     Category breakdown
// @Description Totals per category for one month, largest first. Deleted categories are left out.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month      query int    false "Month 1-12 (default current)"
// @Param       year       query int    false "Year (default current)"
// @Param       type       query string false "income or expense (default expense)"
// @Param       account_id query string false "Limit to one account"
// @Success     200 {array}  services.CategoryAmount "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/category-breakdown [get]
func (h *DashboardHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, accountID, err := monthQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txType := models.TransactionType(c.DefaultQuery("type", string(models.TransactionTypeExpense)))
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense"))
		return
	}

	breakdown, err := h.dashboardService.GetCategoryBreakdown(c.Request.Context(), userID,
		services.BreakdownQuery{Month: month, Year: year, Type: txType, AccountID: accountID})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// GetTotalCash handles the converted cash total
// @Summary     Total cash
// @Description Every account's current balance converted to the base currency. Fails with 503 when rates are needed and unavailable.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.TotalCash "Total cash"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /dashboard/total-cash [get]
func (h *DashboardHandler) GetTotalCash(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.dashboardService.GetTotalCash(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, total)
}
