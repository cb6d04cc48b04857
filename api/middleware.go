package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"perpus/log"
)

const requestIDHeader = "X-Request-ID"

// RequestContext tags the request context with a request id and bounds it
// with timeout, then logs the outcome.
func RequestContext(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := log.WithRequestID(c.Request.Context(), id)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		entry := log.GetLogger(ctx).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Info("request served")
	}
}
