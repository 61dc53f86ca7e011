package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahalat/booking-engine/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs HTTP requests
func RequestLogger(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request completed", fields...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request completed", fields...)
		default:
			logger.InfoContext(c.Request.Context(), "request completed", fields...)
		}
	}
}
