package handlers

import (
	"net/http"
	"time"

	"foodpos-api/config"
	"foodpos-api/services"

	"github.com/gin-gonic/gin"
)

func dashboardService(c *gin.Context) *services.DashboardService {
	return services.NewDashboardService(config.DB.WithContext(c.Request.Context()), time.Now)
}

// DashboardSummary returns today's figures, top sellers, recent sales,
// the last seven days and per-category stats.
func DashboardSummary(c *gin.Context) {
	summary, err := dashboardService(c).Summary()
	if err != nil {
		respondError(c, err, "An error occurred while fetching dashboard")
		return
	}
	respond(c, http.StatusOK, "", summary)
}

func TopFoods(c *gin.Context) {
	foods, err := dashboardService(c).TopFoods(10)
	if err != nil {
		respondError(c, err, "An error occurred while fetching top foods")
		return
	}
	respond(c, http.StatusOK, "", foods)
}
