package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/navid-fn/ecomdash/server/internal/handler"
)

type Config struct {
	DashboardHandler *handler.DashboardHandler
	SessionHandler   *handler.SessionHandler
	Logger           *logrus.Logger

	// RateLimitRPS and RateLimitBurst size the token bucket shared by all
	// clients. A non-positive rate disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}

	api := router.Group("/v1/")
	api.Use(rateLimit(rate.NewLimiter(limit, max(cfg.RateLimitBurst, 1))))
	registerDashboardRoutes(api, cfg.DashboardHandler)
	registerSessionRoutes(api, cfg.SessionHandler)

	return router
}
