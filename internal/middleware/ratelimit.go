package middleware

import (
	"net/http"
	"time"

	"github.com/arenaworks/arena-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a per-client cooldown for an action. With no redis
// client configured it is a no-op.
func RateLimit(rdb *redis.Client, action string, limit time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), rdb, c.ClientIP(), action, limit)
		if err != nil {
			// Redis being down should not take the endpoint with it
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
