package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	// Capacity is the bucket size, i.e. the allowed burst.
	Capacity int
	// RefillPerSecond is how many tokens flow back each second.
	RefillPerSecond float64
	Prefix          string
}

// tokenBucketScript refills the bucket in whole intervals and takes one
// token. It returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimit applies a per client token bucket kept in Redis. The bucket key
// combines the client IP, the caller (when authenticated) and the request
// path. A nil client disables limiting; Redis failures let requests through.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client, logger *slog.Logger) func(http.Handler) http.Handler {
	if rdb == nil || cfg.Capacity <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	interval := time.Second
	if cfg.RefillPerSecond > 0 {
		interval = time.Duration(float64(time.Second) / cfg.RefillPerSecond)
	}
	ttl := 10 * time.Minute
	if minTTL := 5 * interval; ttl < minTTL {
		ttl = minTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(cfg.Prefix, r)
			vals, err := tokenBucketScript.Run(r.Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				interval.Milliseconds(),
				int64(ttl/time.Second),
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				logger.WarnContext(r.Context(), "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "Demasiadas peticiones, inténtalo de nuevo más tarde")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(prefix string, r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}
	user := "anon"
	if identity, err := GetIdentityFromContext(r.Context()); err == nil {
		user = strconv.Itoa(identity.UserID)
	}
	return strings.Join([]string{prefix, "ip", ip, "user", user, "route", r.Method + " " + r.URL.Path}, ":")
}
