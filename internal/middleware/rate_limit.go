package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/pkg/logger"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "trailhead:ratelimit:ip:",
		Message:           "Too many requests, slow down",
	}
}

const rateLimitWindow = time.Minute

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

// limit runs one sliding-window check and aborts with 429 when over the limit.
// Redis errors fail open.
func limit(c *gin.Context, client *redis.Client, key string, cfg RateLimitConfig, scope string) {
	now := time.Now().UnixMilli()
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key},
		cfg.RequestsPerMinute, rateLimitWindow.Milliseconds(), now,
	).Int64Slice()
	if err != nil || len(result) != 3 {
		logger.GetLogger().Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
		c.Next()
		return
	}

	allowed := result[0] == 1
	remaining := result[1]
	resetAt := result[2]

	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if !allowed {
		retryAfter := (resetAt - now) / 1000
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		rateLimitedTotal.WithLabelValues(scope).Inc()
		common.V2ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
		c.Abort()
		return
	}

	c.Next()
}

// RateLimit returns a gin middleware that rate limits by client IP.
// A nil client disables limiting.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || cfg.RequestsPerMinute <= 0 {
			c.Next()
			return
		}
		limit(c, redisClient, cfg.KeyPrefix+c.ClientIP(), cfg, "ip")
	}
}

// RateLimitPerUser returns a rate limiter keyed by user ID instead of IP.
// Mount it after JWTAuth so the identity is resolved.
func RateLimitPerUser(redisClient *redis.Client, requestsPerMinute int) gin.HandlerFunc {
	cfg := RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		KeyPrefix:         "trailhead:ratelimit:user:",
		Message:           "Too many votes or posts, slow down",
	}

	return func(c *gin.Context) {
		if redisClient == nil || requestsPerMinute <= 0 {
			c.Next()
			return
		}

		userID := GetUserID(c)
		if userID == "" {
			// Fall back to IP if not authenticated
			userID = "ip:" + c.ClientIP()
		}
		limit(c, redisClient, cfg.KeyPrefix+userID, cfg, "user")
	}
}
