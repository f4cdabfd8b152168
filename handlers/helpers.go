package handlers

import (
	"log"
	"net/http"

	"github.com/famillio/household-api/middleware"
	"github.com/famillio/household-api/models"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

// respondError maps any error to the stable envelope. Unexpected errors are
// logged and surfaced as INTERNAL without detail.
func respondError(c *gin.Context, err error) {
	if apiErr, ok := err.(*models.APIError); ok {
		c.JSON(apiErr.HTTPStatus(), models.ErrorResponse{Error: apiErr})
		return
	}
	log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	internal := models.NewInternalError("internal server error")
	c.JSON(internal.HTTPStatus(), models.ErrorResponse{Error: internal})
}

func respondValidation(c *gin.Context, err error) {
	apiErr := models.NewValidationError(err.Error(), nil)
	c.JSON(apiErr.HTTPStatus(), models.ErrorResponse{Error: apiErr})
}

// requireMembership resolves the caller against the household in the route and
// enforces the required role set. Returns the caller id and decision; on
// denial the generic envelope has already been written.
func requireMembership(c *gin.Context, authorizer *services.Authorizer, requiredRoles []string) (string, services.Decision, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", services.Decision{}, false
	}

	householdID := c.Param("id")
	decision, err := authorizer.Authorize(c.Request.Context(), householdID, userID, requiredRoles)
	if err != nil {
		respondError(c, err)
		return "", services.Decision{}, false
	}
	if !decision.Allowed {
		respondError(c, models.NewAccessDeniedError())
		return "", services.Decision{}, false
	}

	return userID, decision, true
}
