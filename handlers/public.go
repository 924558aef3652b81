package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports that the API is up
func Health(c *gin.Context) {
	respond(c, http.StatusOK, "FoodPOS API is running!", gin.H{
		"status":  "healthy",
		"service": "FoodPOS API",
		"version": "1.0.0",
	})
}

// NotFound answers unknown routes
func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "Endpoint not found")
}
