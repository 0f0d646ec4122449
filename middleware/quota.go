package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UsageStore charges requests against a monthly per-client allowance.
type UsageStore interface {
	Consume(client string, limit int) (used int, ok bool)
}

// Quota counts each request against the client's monthly usage and refuses
// it once limit is reached. A limit of 0 only counts.
func Quota(store UsageStore, limit int, rejected RejectionRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		used, ok := store.Consume(c.ClientIP(), limit)
		if limit > 0 {
			c.Header("X-Quota-Limit", strconv.Itoa(limit))
			c.Header("X-Quota-Used", strconv.Itoa(used))
		}
		if !ok {
			if rejected != nil {
				rejected.RecordRejected("quota")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Monthly analysis quota exceeded.",
			})
			return
		}

		c.Next()
	}
}
