package router

import (
	"github.com/gin-gonic/gin"

	"github.com/navid-fn/ecomdash/server/internal/handler"
)

func registerDashboardRoutes(router *gin.RouterGroup, dashboardHandler *handler.DashboardHandler) {
	router.GET("/health", dashboardHandler.Health)
	router.GET("/filters", dashboardHandler.GetFilters)

	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("", dashboardHandler.GetDashboard)
		dashboard.GET("/:table", dashboardHandler.GetTable)
	}

	router.GET("/charts/:chart", dashboardHandler.GetChart)
}
