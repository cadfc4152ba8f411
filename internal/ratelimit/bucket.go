package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

const maxTrackedClients = 10000

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerIP is an in-process token bucket per client IP
type PerIP struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	interval time.Duration
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewPerIP allows perMinute requests per minute per IP with a burst of the same size
func NewPerIP(perMinute int) *PerIP {
	if perMinute <= 0 {
		perMinute = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	return &PerIP{
		visitors: make(map[string]*visitor),
		interval: interval,
		rate:     rate.Every(interval),
		burst:    perMinute,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Allow takes one token from the IP's bucket
func (p *PerIP) Allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	v, ok := p.visitors[ip]
	if !ok {
		if len(p.visitors) >= maxTrackedClients {
			p.evictIdle(now)
		}
		v = &visitor{limiter: rate.NewLimiter(p.rate, p.burst)}
		p.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// evictIdle drops buckets unused for longer than the idle period. Must hold p.mu.
func (p *PerIP) evictIdle(now time.Time) {
	for ip, v := range p.visitors {
		if now.Sub(v.lastSeen) > p.idle {
			delete(p.visitors, ip)
		}
	}
}

// Middleware rejects requests over budget with 429
func (p *PerIP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r)
		if !p.Allow(ip) {
			logging.GetLoggerFromContext(r.Context()).Warn("upload rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(p.interval.Seconds()))))
			httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
