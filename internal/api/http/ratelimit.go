package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/observability"
	"github.com/souqna/marketplace/internal/ratelimit"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimit rejects clients that exceed the limiter's budget with 429.
// A failing counter store lets the request through.
func RateLimit(limiter *ratelimit.Limiter, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := clientKey(c)
		result, err := limiter.Check(c.UserContext(), key)
		if err != nil {
			logger.Warn("rate limit store unavailable",
				zap.String("limiter", limiter.Name),
				zap.Error(err))
			return c.Next()
		}

		c.Set(headerRateLimitLimit, strconv.Itoa(result.Limit))
		c.Set(headerRateLimitRemaining, strconv.Itoa(result.Remaining))
		c.Set(headerRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := result.RetryAfter(limiter.Now())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			metrics.RecordRateLimited(limiter.Name)
			return apperrors.NewRateLimited(retryAfter)
		}
		return c.Next()
	}
}

// clientKey identifies the caller by the first X-Forwarded-For hop, then X-Real-IP,
// then the socket address. Forwarding headers are trusted as sent.
func clientKey(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.IP()
}
