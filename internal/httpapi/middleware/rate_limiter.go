package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdle is how long a client's bucket is kept after its last request.
const DefaultLimiterIdle = 10 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for longer than
// idle are dropped on a later request; by then they would have refilled anyway.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
	log       *zap.Logger
}

// NewRateLimiter allows perMinute requests per IP with an equal burst. perMinute <= 0
// disables limiting.
func NewRateLimiter(perMinute int, log *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		limiters: map[string]*clientLimiter{},
		idle:     DefaultLimiterIdle,
		now:      time.Now,
		log:      logging.OrNop(log),
	}
	if perMinute > 0 {
		rl.every = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	rl.lastSweep = rl.now()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}
	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(rl.every, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.lim
}

// sweep drops idle buckets. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) >= rl.idle {
			delete(rl.limiters, ip)
		}
	}
	rl.lastSweep = now
}

// Len is the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.burst == 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !rl.get(ip).Allow() {
			rl.log.Warn("rate limit exceeded", zap.String("ip", ip))
			common.Abort(c, http.StatusTooManyRequests, 42901, "rate limit exceeded, try again later")
			return
		}
		c.Next()
	}
}
