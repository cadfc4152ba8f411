// Package ratelimit throttles clients by IP: a Redis fixed-window limiter for
// credential endpoints and an in-process token bucket for uploads.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is the request budget of one purpose within a window
type Rule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRules apply to the credential endpoints
var DefaultRules = map[string]Rule{
	"login":    {Limit: 10, Window: 15 * time.Minute},
	"register": {Limit: 5, Window: time.Hour},
}

var defaultRule = Rule{Limit: 20, Window: 15 * time.Minute}

// Limiter counts requests per IP and purpose in Redis. Counters expire with
// their window, so a window starts at the first request after the last one expired.
type Limiter struct {
	client *redis.Client
	rules  map[string]Rule
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client, rules: DefaultRules}
}

func (l *Limiter) rule(purpose string) Rule {
	if r, ok := l.rules[purpose]; ok {
		return r
	}
	return defaultRule
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("rate_limit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether the IP has used up its budget
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get rate limit counter: %w", err)
	}

	return count >= l.rule(purpose).Limit, nil
}

// RecordIPRequestWithPurpose counts one request against the IP's budget
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.rule(purpose).Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}
