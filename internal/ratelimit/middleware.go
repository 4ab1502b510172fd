package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vdmx/riskintel/internal/observability/metrics"
	"go.uber.org/zap"
)

// Middleware rejects over-limit clients with 429. Redis outages fail open:
// throttling is protection, not a dependency the API should die on.
func Middleware(l *Limiter, m *metrics.Metrics, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("ratelimit")
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		res, err := l.AllowIP(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limit check failed, allowing request",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if res.Allowed {
			c.Next()
			return
		}

		m.IncRateLimited()
		if res.RetryAfter > 0 {
			seconds := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "too_many_requests",
		})
	}
}
