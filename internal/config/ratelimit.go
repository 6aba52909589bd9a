package config

import "time"

// RateLimitConfig configures the token bucket in front of the purchase
// route.  Each key starts with Burst tokens and regains RefillTokens every
// RefillEvery.
type RateLimitConfig struct {
	Enabled      bool
	Burst        int
	RefillTokens int
	RefillEvery  time.Duration
	TTL          time.Duration // idle buckets expire after this
	KeyStrategy  string        // buyer_route (default), buyer, ip, ip_route, ip_buyer_route
	Prefix       string
	LogDenied    bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  A bucket must outlive
// five refill periods, so TTL is raised to that floor.
func LoadRateLimitConfig() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:      envBool("RATE_LIMIT_ENABLED", true),
		Burst:        max(envInt("RATE_LIMIT_BURST", 10), 1),
		RefillTokens: max(envInt("RATE_LIMIT_REFILL_TOKENS", 1), 1),
		RefillEvery:  envDur("RATE_LIMIT_REFILL_EVERY", time.Second),
		TTL:          envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:  envStr("RATE_LIMIT_KEY_STRATEGY", "buyer_route"),
		Prefix:       envStr("RATE_LIMIT_PREFIX", "rl"),
		LogDenied:    envBool("RATE_LIMIT_LOG_DENIED", false),
	}
	if rl.RefillEvery <= 0 {
		rl.RefillEvery = time.Second
	}
	rl.TTL = max(rl.TTL, 5*rl.RefillEvery)
	return rl
}
