package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/api/shared"
	"golang.org/x/time/rate"
)

// CodeTooManyRequests is the error code of throttled requests.
const CodeTooManyRequests = "too_many_requests"

// maxClients bounds the limiter table; it is reset when full.
const maxClients = 10000

var errRateLimited = errors.New("rate limit exceeded")

// LimitObserver is notified of every throttled request.
type LimitObserver interface {
	RateLimited()
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client address with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	idle     time.Duration
	observer LimitObserver
	now      func() time.Time
}

// NewRateLimiter allows perSecond sustained requests and bursts of burst per
// client. A non-positive perSecond disables limiting. observer may be nil.
func NewRateLimiter(perSecond float64, burst int, observer LimitObserver) *RateLimiter {
	if burst <= 0 {
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiter{
		clients:  make(map[string]*client),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		observer: observer,
		now:      time.Now,
	}
}

// Allow reports whether key may issue another request now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.clients) >= maxClients {
		rl.evictLocked(now)
		if len(rl.clients) >= maxClients {
			rl.clients = make(map[string]*client)
		}
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	cutoff := now.Add(-rl.idle)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Handler wraps next, answering 429 once a client exhausts its bucket.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || rl.Allow(clientKey(r)) {
			next.ServeHTTP(w, r)
			return
		}
		if rl.observer != nil {
			rl.observer.RateLimited()
		}
		retry := 1
		if rl.limit > 0 && float64(rl.limit) < 1 {
			retry = int(1/float64(rl.limit) + 0.5)
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, CodeTooManyRequests, errRateLimited,
			shared.WithElevatedLogLevel())
	})
}

// clientKey returns the client address of r. chi's RealIP has already
// replaced RemoteAddr when a proxy header was present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
