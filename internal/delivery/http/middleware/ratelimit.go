package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter внешний ограничитель частоты (Redis или память процесса).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, per time.Duration) (bool, time.Duration, error)
}

type Rate struct {
	Limit int
	Per   time.Duration
}

var (
	Burst    = Rate{Limit: 10, Per: 10 * time.Second}
	Standard = Rate{Limit: 60, Per: time.Minute}
	Strict   = Rate{Limit: 5, Per: 10 * time.Second}
)

// RateLimit ограничивает частоту запросов по маршруту и адресу клиента.
// При ошибке ограничителя запрос пропускается.
func RateLimit(limiter RateLimiter, route string, rate Rate, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := route + "|" + c.ClientIP()
		ok, retryAfter, err := limiter.Allow(c.Request.Context(), key, rate.Limit, rate.Per)
		if err != nil {
			logger.Warn("rate limiter unavailable", "route", route, "error", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
