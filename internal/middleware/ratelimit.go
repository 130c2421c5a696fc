package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// ClientLimiter hands out one token bucket per client IP. The registry is an
// LRU so idle clients are forgotten once maxClients is reached.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache
	limit    rate.Limit
	burst    int
}

// NewClientLimiter allows rps requests per second per client with the given burst.
func NewClientLimiter(rps float64, burst, maxClients int) (*ClientLimiter, error) {
	if burst <= 0 {
		burst = 1
	}
	cache, err := lru.New(maxClients)
	if err != nil {
		return nil, err
	}
	return &ClientLimiter{
		limiters: cache,
		limit:    rate.Limit(rps),
		burst:    burst,
	}, nil
}

// Allow reports whether client may make a request now.
func (l *ClientLimiter) Allow(client string) bool {
	return l.limiter(client).Allow()
}

// Clients returns the number of tracked clients.
func (l *ClientLimiter) Clients() int {
	return l.limiters.Len()
}

func (l *ClientLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(client); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(client, limiter)
	return limiter
}

// RateLimit rejects requests over the client's budget with 429. The body uses
// the API's {"error": {...}} envelope.
func RateLimit(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(1))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": domain.NewMCPError(domain.ErrRateLimit, "rate limit exceeded", "", c.GetString(RequestIDKey)),
		})
	}
}
