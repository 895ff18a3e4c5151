package middleware

import (
	"net/http"
	"strconv"

	"lifeos/internal/redis"
	"lifeos/internal/services"
	"lifeos/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware applies per-IP rate limiting to auth endpoints.
func RateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAuthEndpoint(c.Request.URL.Path) {
			result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
			if err != nil {
				c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
				c.Abort()
				return
			}

			setRateLimitHeaders(c, result)

			if !result.Allowed {
				c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// WriteRateLimitMiddleware limits authenticated write requests per user.
// Should be applied after auth middleware.
func WriteRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			// No user context, skip rate limiting (auth middleware will handle)
			c.Next()
			return
		}

		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		result, err := limiter.AllowWrite(c.Request.Context(), userID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("write rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}

// isAuthEndpoint checks if the request path is an auth endpoint
func isAuthEndpoint(path string) bool {
	authPaths := []string{
		"/api/auth/login",
		"/api/auth/register",
	}
	for _, p := range authPaths {
		if path == p {
			return true
		}
	}
	return false
}
