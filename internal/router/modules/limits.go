package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
)

// perMinute builds a Redis-backed limiter from the container. Local clients
// bypass it in development.
func perMinute(max int, key middleware.KeyFunc) gin.HandlerFunc {
	var allow middleware.AllowFunc
	if cfg := container.GetConfig(); cfg != nil && cfg.Env == "development" {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(container.GetRedis(), container.GetLogger(), max, time.Minute, key, allow)
}
