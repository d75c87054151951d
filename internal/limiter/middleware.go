package limiter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vortcheno/internal/constants"
	"vortcheno/internal/util"
)

// Middleware enforces the per-caller window quota and attaches quota
// metadata headers to every response, allowed or not, so clients can
// display remaining quota without a separate call.
func Middleware(store CounterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := store.CompareAndIncrement(c.ClientIP(), time.Now())

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

		if !res.Allowed {
			retrySecs := int(res.RetryAfter.Seconds())
			minutes := int(res.RetryAfter.Minutes())
			c.Header("Retry-After", strconv.Itoa(retrySecs))
			util.LogWarn("Rate limit exceeded for %s, retry after %v", c.ClientIP(), res.RetryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      constants.ErrorCodeRateLimited,
				"message":    fmt.Sprintf("Too many chains requested. Try again in %d minute%s.", minutes, util.Plural(minutes)),
				"retryAfter": retrySecs,
			})
			return
		}
		c.Next()
	}
}
