package handlers

import (
	"net/http"

	"github.com/famillio/household-api/middleware"
	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

type HouseholdHandler struct {
	Service    *services.HouseholdService
	Authorizer *services.Authorizer
	Audit      *services.AuditLogger
	WS         *WSHandler
}

func (h *HouseholdHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	household, err := h.Service.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, household)
}

func (h *HouseholdHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	households, err := h.Service.GetUserHouseholds(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, households)
}

func (h *HouseholdHandler) Get(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	household, err := h.Service.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

func (h *HouseholdHandler) Update(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	if err := h.Service.Update(c.Request.Context(), householdID, req); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(householdID, "updated", "household", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Household updated successfully"})
}

func (h *HouseholdHandler) Delete(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.OwnerOnly)
	if !ok {
		return
	}

	householdID := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), householdID); err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), householdID, userID, "household.delete", nil)
	h.WS.BroadcastUpdate(householdID, "deleted", "household", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Household deleted successfully"})
}

func (h *HouseholdHandler) ListMembers(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.AnyRole)
	if !ok {
		return
	}

	members, err := h.Service.GetMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *HouseholdHandler) UpdateMemberRole(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.OwnerOnly)
	if !ok {
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	if err := h.Service.UpdateMemberRole(c.Request.Context(), householdID, c.Param("member_id"), req.Role); err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), householdID, userID, "member.role_update", map[string]interface{}{
		"member_id": c.Param("member_id"),
		"role":      req.Role,
	})
	h.WS.BroadcastUpdate(householdID, "updated", "member", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Member role updated successfully"})
}

func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	householdID := c.Param("id")
	if err := h.Service.RemoveMember(c.Request.Context(), householdID, c.Param("member_id")); err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), householdID, userID, "member.remove", map[string]interface{}{
		"member_id": c.Param("member_id"),
	})
	h.WS.BroadcastUpdate(householdID, "deleted", "member", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
