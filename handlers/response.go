package handlers

import (
	"log"
	"net/http"
	"strconv"

	"foodpos-api/services"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// envelope is the body of every JSON response
type envelope struct {
	Success              bool        `json:"success"`
	Message              string      `json:"message,omitempty"`
	Data                 interface{} `json:"data,omitempty"`
	Pagination           *Pagination `json:"pagination,omitempty"`
	RequiresConfirmation bool        `json:"requiresConfirmation,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data interface{}, p Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// respondError maps service errors to statuses. Anything unexpected is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error, fallback string) {
	var confirm *services.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		c.AbortWithStatusJSON(http.StatusConflict, envelope{
			Success:              false,
			Message:              confirm.Error(),
			Data:                 confirm,
			RequiresConfirmation: true,
		})
		return
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status := http.StatusBadRequest
		switch svcErr.Kind {
		case services.KindNotFound:
			status = http.StatusNotFound
		case services.KindConflict:
			status = http.StatusConflict
		}
		fail(c, status, svcErr.Message)
		return
	}

	log.Printf("%s %s: %+v", c.Request.Method, c.Request.URL.Path, err)
	fail(c, http.StatusInternalServerError, fallback)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
