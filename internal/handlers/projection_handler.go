package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashflow/internal/services"
)

// ProjectionHandler serves the forward cashflow projection.
type ProjectionHandler struct {
	projectionService services.ProjectionServicer
}

// NewProjectionHandler creates a new ProjectionHandler.
func NewProjectionHandler(projectionService services.ProjectionServicer) *ProjectionHandler {
	return &ProjectionHandler{projectionService: projectionService}
}

// GetProjections handles the six-month projection
// @Summary     Cashflow projection
// @Description Projected income, expense and running balance per account for the current and next five months, with grand totals in the base currency
// @Tags        projections
// @Produce     json
// @Security    BearerAuth
// @Param       account_id query string false "Project a single account"
// @Success     200 {object} services.Projection "Projection"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /projections [get]
func (h *ProjectionHandler) GetProjections(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := optionalUUIDQuery(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.projectionService.GetProjections(c.Request.Context(), userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}
