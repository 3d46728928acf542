package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recommendations-service/internal/shared/metrics"
	"recommendations-service/internal/shared/telemetry"
)

// Logging emits a structured log per request and records request metrics.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, latency)

		recommendationID, _ := c.Get("recommendationId")
		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            status,
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"recommendation_id": recommendationID,
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
