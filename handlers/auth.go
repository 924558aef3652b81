package handlers

import (
	"net/http"

	"foodpos-api/config"
	"foodpos-api/middleware"
	"foodpos-api/services"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := services.NewAuthService(config.DB.WithContext(c.Request.Context())).
		Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		respondError(c, err, "An error occurred while logging in")
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile
func Me(c *gin.Context) {
	user, err := services.NewAuthService(config.DB.WithContext(c.Request.Context())).
		User(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "An error occurred while fetching user")
		return
	}
	respond(c, http.StatusOK, "", user)
}
