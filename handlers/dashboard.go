package handlers

import (
	"net/http"
	"time"

	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Service    *services.DashboardService
	Authorizer *services.Authorizer
}

// GetMonthlySummary serves the dashboard for ?month=YYYY-MM (current month
// when omitted) and optional ?budget_id=. Served from cache within the TTL.
func (h *DashboardHandler) GetMonthlySummary(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	summary, err := h.Service.GetMonthlySummary(
		c.Request.Context(),
		c.Param("id"),
		c.Query("month"),
		c.Query("budget_id"),
		time.Now(),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
