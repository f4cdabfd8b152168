package handlers

import (
	"net/http"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	Service    *services.RecurringService
	Authorizer *services.Authorizer
	WS         *WSHandler
}

func (h *RecurringHandler) Create(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.WritingRoles)
	if !ok {
		return
	}

	var req models.CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	recurring, err := h.Service.Create(c.Request.Context(), householdID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "created", "recurring_expense", userID)
	c.JSON(http.StatusCreated, recurring)
}

func (h *RecurringHandler) List(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	recurring, err := h.Service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recurring)
}

func (h *RecurringHandler) Update(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.UpdateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	recurring, err := h.Service.Update(c.Request.Context(), householdID, c.Param("recurring_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "updated", "recurring_expense", userID)
	c.JSON(http.StatusOK, recurring)
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	householdID := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), householdID, c.Param("recurring_id")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "deleted", "recurring_expense", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}

// Run materializes every due definition into concrete expense rows.
func (h *RecurringHandler) Run(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	householdID := c.Param("id")
	result, err := h.Service.Materialize(c.Request.Context(), householdID, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Created > 0 {
		h.WS.BroadcastUpdate(householdID, "created", "expenses", userID)
	}
	c.JSON(http.StatusOK, result)
}
