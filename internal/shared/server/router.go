package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recommendations-service/internal/recommendations"
	"recommendations-service/internal/services/health"
	"recommendations-service/internal/shared/config"
	"recommendations-service/internal/shared/metrics"
	"recommendations-service/internal/shared/server/middleware"
	"recommendations-service/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config                 config.Config
	Health                 *health.Service
	RecommendationsHandler *recommendations.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if deps.Config.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			},
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "resource not found", nil)
	})
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService("unknown")
	}
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, healthSvc.Index())
	})
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	if deps.RecommendationsHandler != nil {
		deps.RecommendationsHandler.RegisterRoutes(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
