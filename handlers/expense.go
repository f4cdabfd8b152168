package handlers

import (
	"net/http"
	"time"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	Service    *services.ExpenseService
	Authorizer *services.Authorizer
	WS         *WSHandler
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.WritingRoles)
	if !ok {
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	expense, err := h.Service.Create(c.Request.Context(), householdID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "created", "expense", userID)
	c.JSON(http.StatusCreated, expense)
}

// BulkCreate inserts 1..100 expenses atomically.
func (h *ExpenseHandler) BulkCreate(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.WritingRoles)
	if !ok {
		return
	}

	var req models.BulkCreateExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	expenses, err := h.Service.BulkCreate(c.Request.Context(), householdID, userID, req.Expenses)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "created", "expenses", userID)
	c.JSON(http.StatusCreated, gin.H{
		"created":  len(expenses),
		"expenses": expenses,
	})
}

func (h *ExpenseHandler) List(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	filter := models.ExpenseFilter{
		BudgetID:   c.Query("budget_id"),
		CategoryID: c.Query("category_id"),
		Type:       c.Query("type"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(c, models.NewValidationError("invalid from date", map[string]string{"from": "expected YYYY-MM-DD"}))
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			respondError(c, models.NewValidationError("invalid to date", map[string]string{"to": "expected YYYY-MM-DD"}))
			return
		}
		filter.To = &t
	}

	expenses, err := h.Service.List(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	expense, err := h.Service.GetByID(c.Request.Context(), c.Param("id"), c.Param("expense_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	userID, decision, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	householdID := c.Param("id")
	expenseID := c.Param("expense_id")

	if !h.canMutate(c, decision, householdID, expenseID, userID) {
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	expense, err := h.Service.Update(c.Request.Context(), householdID, expenseID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "updated", "expense", userID)
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, decision, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	householdID := c.Param("id")
	expenseID := c.Param("expense_id")

	if !h.canMutate(c, decision, householdID, expenseID, userID) {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), householdID, expenseID); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "deleted", "expense", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// canMutate enforces the creator-or-manager rule for expense writes.
func (h *ExpenseHandler) canMutate(c *gin.Context, decision services.Decision, householdID, expenseID, userID string) bool {
	creatorID, err := h.Service.CreatorID(c.Request.Context(), householdID, expenseID)
	if err != nil {
		respondError(c, err)
		return false
	}

	if d := services.CanMutateExpense(decision.Role, creatorID, userID); !d.Allowed {
		respondError(c, models.NewAccessDeniedError())
		return false
	}
	return true
}
