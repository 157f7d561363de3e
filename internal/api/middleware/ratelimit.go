package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/utils"
)

// windowCounter increments the request counter for a key within its window
type windowCounter interface {
	incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisCounter counts in Redis so the limit holds across process instances
type redisCounter struct {
	client *redis.Client
}

func (rc *redisCounter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	// Pipeline the increment and expiry so the counter always carries a TTL
	pipe := rc.client.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}

// RateLimiter enforces a fixed-window request limit per client. On counter
// backend errors the limiter fails open rather than blocking legitimate
// traffic.
type RateLimiter struct {
	counter windowCounter
	logger  *logrus.Logger
	limit   int
	window  time.Duration
}

// NewRateLimiter creates a Redis-backed request rate limiter
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger *logrus.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		counter: &redisCounter{client: redisClient},
		logger:  logger,
		limit:   limit,
		window:  window,
	}
}

// Middleware returns the gin handler enforcing the limit per client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := rl.clientKey(c.ClientIP())

		count, err := rl.counter.incr(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.logger.WithError(err).WithFields(logrus.Fields{
				"component": "rate_limiter",
				"client_ip": c.ClientIP(),
			}).Error("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			rl.logger.WithFields(logrus.Fields{
				"component": "rate_limiter",
				"client_ip": c.ClientIP(),
				"count":     count,
				"limit":     rl.limit,
			}).Debug("Request blocked by rate limit")
			utils.SendTooManyRequests(c, "rate limit exceeded, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientKey generates the counter key for the client's current window
func (rl *RateLimiter) clientKey(clientIP string) string {
	windowID := time.Now().Unix() / int64(rl.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:window:%d", clientIP, windowID)
}
