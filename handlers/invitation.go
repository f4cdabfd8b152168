package handlers

import (
	"database/sql"
	"net/http"

	"github.com/famillio/household-api/middleware"
	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"
	"github.com/famillio/household-api/utils"

	"github.com/gin-gonic/gin"
)

type InvitationHandler struct {
	DB         *sql.DB
	Service    *services.InvitationService
	Authorizer *services.Authorizer
}

// Invite creates an invitation and mails the accept link. Email failure does
// not fail the request; the token is returned for manual sharing.
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	var req models.InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	householdID := c.Param("id")
	invitation, err := h.Service.Create(c.Request.Context(), householdID, req.Email, req.Role, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var householdName, inviterName string
	err = h.DB.QueryRow(`
		SELECT h.name, u.name
		FROM households h, users u
		WHERE h.id = $1 AND u.id = $2
	`, householdID, userID).Scan(&householdName, &inviterName)
	if err != nil {
		inviterName = "A user"
		householdName = "a household"
	}

	if err := utils.SendInvitationEmail(req.Email, inviterName, householdName, invitation.Token); err != nil {
		c.JSON(http.StatusCreated, gin.H{
			"id":      invitation.ID,
			"token":   invitation.Token,
			"message": "Invitation created but email failed to send",
			"warning": "Please share the invitation link manually",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      invitation.ID,
		"message": "Invitation sent successfully",
	})
}

func (h *InvitationHandler) List(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	invitations, err := h.Service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

func (h *InvitationHandler) Cancel(c *gin.Context) {
	_, _, ok := requireMembership(c, h.Authorizer, services.ManagerRoles)
	if !ok {
		return
	}

	if err := h.Service.Cancel(c.Request.Context(), c.Param("id"), c.Param("invitation_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled successfully"})
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	var email string
	if err := h.DB.QueryRow(`SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		respondError(c, err)
		return
	}

	household, err := h.Service.Accept(c.Request.Context(), req.Token, userID, email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Invitation accepted successfully",
		"household": household,
	})
}
