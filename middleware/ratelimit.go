package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thisdotrob/family-monolith/config"
)

// RateLimitMiddleware 基于Redis固定窗口的限流中间件，按客户端IP每分钟计数
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 || config.RedisClient == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		window := time.Now().Format("200601021504")
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), window)

		count, err := config.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis不可用时放行，限流不应阻断业务
			config.Logger.Warnw("限流计数失败", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			config.RedisClient.Expire(ctx, key, time.Minute)
		}

		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后重试"})
			return
		}

		c.Next()
	}
}
