package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"recommendations-service/internal/shared/telemetry"
)

// CORS sets CORS headers and answers preflight requests for the allowed origins.
// An empty list or "*" allows every origin without credentials. Origins given
// without a scheme are treated as https; other schemes are dropped.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	var origins []string
	allowAll := false
	configured := 0
	for _, o := range allowedOrigins {
		trimmed := strings.TrimSpace(o)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAll = true
			break
		}
		configured++
		if origin, ok := normalizeOrigin(trimmed); ok {
			origins = append(origins, origin)
		}
	}

	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Location"},
		MaxAge:        10 * time.Minute,
	}
	switch {
	case allowAll || configured == 0:
		cfg.AllowAllOrigins = true
	case len(origins) == 0:
		// every configured origin was rejected; deny cross-origin requests
		cfg.AllowOriginFunc = func(string) bool { return false }
	default:
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func normalizeOrigin(origin string) (string, bool) {
	origin = strings.ToLower(origin)
	if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		return origin, true
	}
	if strings.Contains(origin, "://") {
		telemetry.Warn("cors.origin_rejected", map[string]any{"origin": origin})
		return "", false
	}
	normalized := "https://" + origin
	telemetry.Warn("cors.origin_scheme_added", map[string]any{"origin": origin, "normalized": normalized})
	return normalized, true
}
