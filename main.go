package main

import (
	"log"
	"os"
	"time"

	"github.com/famillio/household-api/config"
	"github.com/famillio/household-api/handlers"
	"github.com/famillio/household-api/middleware"
	"github.com/famillio/household-api/routes"
	"github.com/famillio/household-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Dashboard summary cache: redis when REDIS_URL is set, in-memory otherwise.
	var summaryCache services.SummaryCache
	if redisClient, err := config.InitRedis(); err != nil {
		log.Printf("⚠️ Redis unavailable, falling back to in-memory cache: %v", err)
		summaryCache = services.NewMemoryCache(services.DashboardCacheTTL)
	} else {
		log.Println("✅ Redis connected successfully")
		summaryCache = services.NewRedisCache(redisClient, services.DashboardCacheTTL)
	}

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	allowedOrigins := []string{
		frontendURL,
		"https://famillio.app",
		"https://www.famillio.app",
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		log.Printf("📨 %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, db)
		v1.GET("/ws/households/:id", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupUserRoutes(protected, db)
			routes.SetupHouseholdRoutes(protected, db, wsHandler)
			routes.SetupBudgetRoutes(protected, db, wsHandler)
			routes.SetupCategoryRoutes(protected, db, wsHandler)
			routes.SetupExpenseRoutes(protected, db, wsHandler)
			routes.SetupRecurringRoutes(protected, db, wsHandler)
			routes.SetupInvitationRoutes(protected, db)
			routes.SetupDashboardRoutes(protected, db, summaryCache)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
