package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/streakmate/streakmate/config"
	"github.com/streakmate/streakmate/utils"
)

const limiterIdleTTL = 5 * time.Minute

type ipLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

var (
	ipLimiters   = map[string]*ipLimiter{}
	ipLimitersMu sync.Mutex
)

// RateLimitMiddleware rejects requests once a client IP exhausts its token
// bucket. Buckets for idle IPs are dropped so the map stays bounded.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := config.Get().RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		if !allowIP(ctx.ClientIP(), limit, burst) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func allowIP(ip string, limit rate.Limit, burst int) bool {
	ipLimitersMu.Lock()
	defer ipLimitersMu.Unlock()

	now := time.Now()
	for key, l := range ipLimiters {
		if now.Sub(l.lastSeen) > limiterIdleTTL {
			delete(ipLimiters, key)
		}
	}

	l, ok := ipLimiters[ip]
	if !ok {
		l = &ipLimiter{bucket: rate.NewLimiter(limit, burst)}
		ipLimiters[ip] = l
	}
	l.lastSeen = now
	return l.bucket.Allow()
}
