package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces rate limits on avatar and blob uploads using a Redis
// sliding window
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int // Max uploads per minute per IP
	maxPerDay    int // Max uploads per day per owner address
	now          func() time.Time
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// ARGV[4] = unique member
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('EXPIRE', key, window)
return 1
`

var uploadScript = goredis.NewScript(uploadRateLimitScript)

// NewUploadLimiter creates an upload rate limiter.
// Default: 10 uploads/min per IP, 50 uploads/day per owner.
// A nil client disables limiting.
func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		now:          time.Now,
	}
}

// AllowUpload checks if an upload is allowed based on rate limits.
// Returns (allowed, retryAfterSeconds, error).
// Without Redis it fails open and reports why; on Redis errors it fails closed.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, owner string) (bool, int, error) {
	if ul.client == nil {
		return true, 0, fmt.Errorf("rate limiter unavailable - Redis not connected")
	}

	now := ul.now()

	ipKey := fmt.Sprintf("ratelimit:upload:ip:%s", ip)
	allowed, err := ul.checkLimit(ctx, ipKey, ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if owner != "" {
		ownerKey := fmt.Sprintf("ratelimit:upload:owner:%s", owner)
		allowed, err = ul.checkLimit(ctx, ownerKey, ul.maxPerDay, 86400, now)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

// checkLimit performs the atomic sliding window rate limit check
func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, window int, now time.Time) (bool, error) {
	member := fmt.Sprintf("%d", now.UnixNano())
	result, err := uploadScript.Run(ctx, ul.client, []string{key}, limit, window, now.Unix(), member).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
