package handlers

import (
	"net/http"

	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Service    *services.CategoryService
	Authorizer *services.Authorizer
	Audit      *services.AuditLogger
	WS         *WSHandler
}

func (h *CategoryHandler) Create(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	category, err := h.Service.Create(c.Request.Context(), householdID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "created", "category", userID)
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) List(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	categories, err := h.Service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	category, err := h.Service.Update(c.Request.Context(), householdID, c.Param("category_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "updated", "category", userID)
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	householdID := c.Param("id")
	force := c.Query("force") == "true"

	if err := h.Service.Delete(c.Request.Context(), householdID, c.Param("category_id"), force); err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), householdID, userID, "category.delete", map[string]interface{}{
		"category_id": c.Param("category_id"),
		"force":       force,
	})
	h.WS.BroadcastUpdate(householdID, "deleted", "category", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
