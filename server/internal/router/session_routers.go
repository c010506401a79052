package router

import (
	"github.com/gin-gonic/gin"

	"github.com/navid-fn/ecomdash/server/internal/handler"
)

func registerSessionRoutes(router *gin.RouterGroup, sessionHandler *handler.SessionHandler) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.PUT("/:id/selection", sessionHandler.UpdateSelection)
		sessions.DELETE("/:id", sessionHandler.Delete)
		sessions.GET("/:id/live", sessionHandler.Live)
	}
}
