package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
}

// RejectionRecorder counts requests refused by RateLimiter or Quota.
type RejectionRecorder interface {
	RecordRejected(reason string)
}

// StatsMiddleware records every request and logs analysis calls. Routes
// are reported by their pattern so ids in paths do not explode label
// cardinality.
func StatsMiddleware(recorder RequestRecorder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		if recorder != nil {
			recorder.RecordRequest(c.Request.Method, c.FullPath(), status, elapsed)
		}

		logger.Debug("Request served",
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("elapsed", elapsed))
	}
}
