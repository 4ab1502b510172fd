// Package ratelimit throttles anonymous clients per IP with a redis
// fixed-window counter. Without a configured redis the limiter is disabled
// and every request passes.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/vdmx/riskintel/internal/config"
)

const keyClientIP = "rl:ip:%s"

// fixedWindowScript counts hits in the current window and reports the time
// left until the window resets. The first hit arms the expiry.
const fixedWindowScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`

// Result is one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is nil-safe: a nil *Limiter allows everything.
type Limiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

// New builds the per-IP limiter from config. Returns nil (disabled) when no
// redis address is configured.
func New(cfg config.Config) (*Limiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindowSec <= 0 {
		return nil, errors.New("rate limit requests and window must be positive")
	}
	return &Limiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		script: redis.NewScript(fixedWindowScript),
		limit:  cfg.RateLimitRequests,
		window: time.Duration(cfg.RateLimitWindowSec) * time.Second,
	}, nil
}

func (l *Limiter) Enabled() bool { return l != nil && l.client != nil }

// AllowIP admits or rejects one request from the given client IP.
func (l *Limiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}

	key := fmt.Sprintf(keyClientIP, strings.TrimSpace(ip))
	res, err := l.script.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, errors.New("unexpected rate limit script response")
	}

	count := castToInt(res[0])
	ttl := castToInt(res[1])

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	out := &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
	}
	if !out.Allowed && ttl > 0 {
		out.RetryAfter = time.Duration(ttl) * time.Millisecond
	}
	return out, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}
