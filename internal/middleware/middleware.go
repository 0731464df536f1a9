package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// CorrelationIDHeader is read from requests and echoed on responses.
	CorrelationIDHeader = "X-Correlation-Id"
	// CorrelationIDKey is the gin context key holding the request's correlation id.
	CorrelationIDKey = "correlation_id"
)

var newCorrelationID = defaultCorrelationID

func defaultCorrelationID() string {
	return uuid.NewString()
}

// CorrelationID attaches a correlation id to every request, reusing the
// caller's header when present.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if id == "" {
			id = newCorrelationID()
		}
		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// Logger writes one access log line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.With(zap.String("component", "http"))
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String(CorrelationIDKey, c.GetString(CorrelationIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RequestLogger returns logger annotated with the request's correlation id.
func RequestLogger(c *gin.Context, logger *zap.Logger) *zap.Logger {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return logger.With(zap.String(CorrelationIDKey, id))
	}
	return logger
}
