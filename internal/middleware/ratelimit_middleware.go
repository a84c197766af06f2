package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/tinypost/tinypost/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimitMiddlewareConfig struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
}

type tenantLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitMiddleware limits requests per tenant, or per client ip for
// requests without a user context.
type RateLimitMiddleware struct {
	config   RateLimitMiddlewareConfig
	limit    rate.Limit
	mu       sync.Mutex
	limiters map[string]*tenantLimiter
}

func NewRateLimitMiddleware(config RateLimitMiddlewareConfig) *RateLimitMiddleware {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	return &RateLimitMiddleware{
		config:   config,
		limit:    rate.Limit(float64(config.RequestsPerMinute) / 60.0),
		limiters: make(map[string]*tenantLimiter),
	}
}

func (m *RateLimitMiddleware) Init() error {
	return nil
}

func (m *RateLimitMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if context, err := utils.GetContext(c); err == nil {
			key = "tenant:" + strconv.FormatInt(context.TenantID, 10)
		}

		if !m.limiter(key).Allow() {
			c.Header("Retry-After", strconv.Itoa(m.retryAfter()))
			c.AbortWithStatusJSON(429, gin.H{
				"status":  429,
				"message": "Too Many Requests",
			})
			return
		}

		c.Next()
	}
}

func (m *RateLimitMiddleware) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	entry, ok := m.limiters[key]
	if !ok {
		entry = &tenantLimiter{limiter: rate.NewLimiter(m.limit, m.config.Burst)}
		m.limiters[key] = entry
	}
	entry.lastAccess = now

	return entry.limiter
}

// Cleanup drops limiters that have been idle for two cleanup intervals
func (m *RateLimitMiddleware) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ttl := m.config.CleanupInterval * 2
	now := time.Now()

	for key, entry := range m.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(m.limiters, key)
		}
	}
}

func (m *RateLimitMiddleware) CleanupInterval() time.Duration {
	return m.config.CleanupInterval
}

func (m *RateLimitMiddleware) retryAfter() int {
	return max(int(math.Ceil(1.0/float64(m.limit))), 1)
}
