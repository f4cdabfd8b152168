package routes

import (
	"database/sql"

	"github.com/famillio/household-api/handlers"
	"github.com/famillio/household-api/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupUserRoutes sets up protected user profile routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}

// SetupHouseholdRoutes sets up household and member management routes.
func SetupHouseholdRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.HouseholdHandler{
		Service:    services.NewHouseholdService(db),
		Authorizer: services.NewAuthorizer(db),
		Audit:      services.NewAuditLogger(db),
		WS:         ws,
	}

	rg.POST("/households", h.Create)
	rg.GET("/households", h.List)
	rg.GET("/households/:id", h.Get)
	rg.PUT("/households/:id", h.Update)
	rg.DELETE("/households/:id", h.Delete)

	rg.GET("/households/:id/members", h.ListMembers)
	rg.PUT("/households/:id/members/:member_id/role", h.UpdateMemberRole)
	rg.DELETE("/households/:id/members/:member_id", h.RemoveMember)
}

// SetupBudgetRoutes sets up budget, progress and health routes.
func SetupBudgetRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.BudgetHandler{
		Service:    services.NewBudgetService(db),
		Progress:   services.NewProgressService(db),
		Authorizer: services.NewAuthorizer(db),
		WS:         ws,
	}

	rg.POST("/households/:id/budgets", h.Create)
	rg.GET("/households/:id/budgets", h.List)
	rg.GET("/households/:id/budgets/health", h.GetHealth)
	rg.GET("/households/:id/budgets/:budget_id", h.Get)
	rg.PUT("/households/:id/budgets/:budget_id", h.Update)
	rg.DELETE("/households/:id/budgets/:budget_id", h.Delete)
	rg.GET("/households/:id/budgets/:budget_id/progress", h.GetProgress)
}

// SetupCategoryRoutes sets up category routes.
func SetupCategoryRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.CategoryHandler{
		Service:    services.NewCategoryService(db),
		Authorizer: services.NewAuthorizer(db),
		Audit:      services.NewAuditLogger(db),
		WS:         ws,
	}

	rg.POST("/households/:id/categories", h.Create)
	rg.GET("/households/:id/categories", h.List)
	rg.PUT("/households/:id/categories/:category_id", h.Update)
	rg.DELETE("/households/:id/categories/:category_id", h.Delete)
}

// SetupExpenseRoutes sets up expense routes including bulk create.
func SetupExpenseRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.ExpenseHandler{
		Service:    services.NewExpenseService(db),
		Authorizer: services.NewAuthorizer(db),
		WS:         ws,
	}

	rg.POST("/households/:id/expenses", h.Create)
	rg.POST("/households/:id/expenses/bulk", h.BulkCreate)
	rg.GET("/households/:id/expenses", h.List)
	rg.GET("/households/:id/expenses/:expense_id", h.Get)
	rg.PUT("/households/:id/expenses/:expense_id", h.Update)
	rg.DELETE("/households/:id/expenses/:expense_id", h.Delete)
}

// SetupRecurringRoutes sets up recurring expense definition routes and the
// materializer trigger.
func SetupRecurringRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.RecurringHandler{
		Service:    services.NewRecurringService(db),
		Authorizer: services.NewAuthorizer(db),
		WS:         ws,
	}

	rg.POST("/households/:id/recurring", h.Create)
	rg.GET("/households/:id/recurring", h.List)
	rg.PUT("/households/:id/recurring/:recurring_id", h.Update)
	rg.DELETE("/households/:id/recurring/:recurring_id", h.Delete)
	rg.POST("/households/:id/recurring/run", h.Run)
}

// SetupInvitationRoutes sets up invitation routes.
func SetupInvitationRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := &handlers.InvitationHandler{
		DB:         db,
		Service:    services.NewInvitationService(db),
		Authorizer: services.NewAuthorizer(db),
	}

	rg.POST("/households/:id/invitations", h.Invite)
	rg.GET("/households/:id/invitations", h.List)
	rg.DELETE("/households/:id/invitations/:invitation_id", h.Cancel)
	rg.POST("/invitations/accept", h.Accept)
}

// SetupDashboardRoutes sets up the monthly summary route.
func SetupDashboardRoutes(rg *gin.RouterGroup, db *sql.DB, cache services.SummaryCache) {
	h := &handlers.DashboardHandler{
		Service:    services.NewDashboardService(db, cache),
		Authorizer: services.NewAuthorizer(db),
	}

	rg.GET("/households/:id/dashboard", h.GetMonthlySummary)
}
