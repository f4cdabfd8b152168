package handlers

import (
	"net/http"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	Service    *services.BudgetService
	Progress   *services.ProgressService
	Authorizer *services.Authorizer
	WS         *WSHandler
}

func (h *BudgetHandler) Create(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	budget, err := h.Service.Create(c.Request.Context(), householdID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "created", "budget", userID)
	c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandler) List(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	budgets, err := h.Service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

func (h *BudgetHandler) Get(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	budget, err := h.Service.GetByID(c.Request.Context(), c.Param("id"), c.Param("budget_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) Update(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	budget, err := h.Service.Update(c.Request.Context(), householdID, c.Param("budget_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "updated", "budget", userID)
	c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	householdID := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), householdID, c.Param("budget_id")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "deleted", "budget", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetProgress returns the derived spent/remaining/percentage/status figures.
func (h *BudgetHandler) GetProgress(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	progress, err := h.Progress.GetBudgetProgress(c.Request.Context(), c.Param("id"), c.Param("budget_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetHealth evaluates every active budget of the household, grouped by status.
func (h *BudgetHandler) GetHealth(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	report, err := h.Progress.GetHealthReport(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
