package routes

import (
	"foodpos-api/config"
	"foodpos-api/handlers"
	"foodpos-api/middleware"
	"foodpos-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	admin := middleware.RoleRequired(models.RoleAdmin)

	// ── Public routes ──────────────────────────────────────────────
	r.GET("/health", handlers.Health)
	r.POST("/login", handlers.Login)
	r.Static("/uploads", config.App.UploadDir)

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/me", handlers.Me)
	}

	categories := auth.Group("/categories")
	{
		categories.GET("", handlers.ListCategories)
		categories.GET("/:id", handlers.GetCategory)
		categories.POST("", admin, handlers.CreateCategory)
		categories.PUT("/:id", admin, handlers.UpdateCategory)
		categories.DELETE("/:id", admin, handlers.DeleteCategory)
	}

	foods := auth.Group("/foods")
	{
		foods.GET("", handlers.ListFoods)
		foods.GET("/:id", handlers.GetFood)
		foods.POST("", admin, handlers.CreateFood)
		foods.PUT("/:id", admin, handlers.UpdateFood)
		foods.DELETE("/:id", admin, handlers.DeleteFood)
	}

	transactions := auth.Group("/transactions")
	{
		transactions.POST("", handlers.CreateTransaction)
		transactions.GET("", handlers.ListTransactions)
		transactions.GET("/history", handlers.TransactionHistory)
		transactions.GET("/lifecycle", handlers.TransactionLifecycle)
		transactions.GET("/:id", handlers.GetTransaction)
		transactions.POST("/:id/refund", admin, handlers.RefundTransaction)
		transactions.DELETE("/:id", admin, handlers.DeleteTransaction)
	}

	dashboard := auth.Group("/dashboard")
	{
		dashboard.GET("/summary", handlers.DashboardSummary)
		dashboard.GET("/top-foods", handlers.TopFoods)
	}

	r.NoRoute(handlers.NotFound)
}
