package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/logging"
)

// takeScript refills the bucket stored at KEYS[1] for the whole refill
// periods elapsed since its last refill, then tries to take one token.
// Returns {allowed, tokens_left, wait_ms}.
var takeScript = redis.NewScript(`
local burst, per, every, now = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens, ts = tonumber(b[1]), tonumber(b[2])
if tokens == nil or ts == nil then
    tokens, ts = burst, now
end
local periods = math.floor(math.max(0, now - ts) / every)
if periods > 0 then
    tokens = math.min(burst, tokens + periods * per)
    ts = ts + periods * every
end
local allowed, wait = 0, 0
if tokens > 0 then
    allowed, tokens = 1, tokens - 1
else
    wait = every - (now - ts)
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {allowed, tokens, wait}
`)

var errBucketReply = errors.New("unexpected token bucket reply")

type bucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

// take spends one token for key.
func (b bucket) take(ctx context.Context, key string) (allowed bool, left, waitMs int64, err error) {
	res, err := takeScript.Run(ctx, b.rdb, []string{key},
		b.cfg.Burst, b.cfg.RefillTokens, b.cfg.RefillEvery.Milliseconds(),
		time.Now().UnixMilli(), int64(b.cfg.TTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, errBucketReply
	}
	return res[0] == 1, res[1], res[2], nil
}

// NewTokenBucket throttles the purchase route per KeyStrategy so a single
// client cannot monopolize the seat class row locks.  Redis errors fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := bucket{cfg: cfg, rdb: rdb}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			ctx := c.Request().Context()

			allowed, left, waitMs, err := b.take(ctx, key)
			if err != nil {
				logging.FromContext(ctx).WithError(err).Warn("rate limiter unavailable, allowing request")
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
			if allowed {
				return next(c)
			}

			secs := max((waitMs+999)/1000, 1)
			h.Set("Retry-After", strconv.FormatInt(secs, 10))
			if cfg.LogDenied {
				logging.FromContext(ctx).WithFields(logrus.Fields{"ratelimit_key": key, "retry_ms": waitMs}).Info("rate limited")
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded", "retry_after": secs})
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	buyer := BuyerID(c)
	if buyer == "" {
		buyer = "anon"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "buyer":
		parts = append(parts, "buyer", buyer)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "ip_buyer_route":
		parts = append(parts, "ip", ip, "buyer", buyer, "route", route)
	default:
		parts = append(parts, "buyer", buyer, "route", route)
	}
	return strings.Join(parts, ":")
}
