package main

import (
	"log"
	"time"

	"foodpos-api/config"
	"foodpos-api/routes"
	"foodpos-api/seeders"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	config.App = config.Load()

	// Set Gin mode
	if config.App.GinMode != "" {
		gin.SetMode(config.App.GinMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database
	config.InitDB()

	if config.App.Seed {
		if err := seeders.Seed(config.DB); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Register all routes
	routes.SetupRoutes(r)

	log.Printf("Server running on http://localhost:%s", config.App.Port)
	if err := r.Run(":" + config.App.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
