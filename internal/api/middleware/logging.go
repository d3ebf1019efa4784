// Package middleware provides HTTP middleware for the catalog REST API:
// request logging with request IDs, Prometheus metrics, CORS and per-IP
// rate limiting.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/util"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// Gin context keys set by RequestLogger.
const (
	ContextKeyLogger    = "logger"
	ContextKeyRequestID = "request_id"
)

// RequestLogger creates a middleware that logs every HTTP request with a
// request-scoped logger.
//
// A valid UUID in the X-Request-ID header is reused as the request ID,
// otherwise a new one is generated and echoed back in the response. The
// logger is stored both in the gin context and in the request context, where
// the service layer picks it up through logging.FromContext.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := incomingRequestID(c)
		start := time.Now()

		requestLogger := logger.With(
			zap.String(logging.FieldRequestID, requestID),
			zap.String(logging.FieldMethod, c.Request.Method),
			zap.String(logging.FieldPath, c.Request.URL.Path),
			zap.String(logging.FieldRemoteAddr, c.ClientIP()),
			zap.String(logging.FieldUserAgent, c.Request.UserAgent()),
		)

		c.Set(ContextKeyLogger, requestLogger)
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		ctx := logging.WithLogger(c.Request.Context(), requestLogger)
		c.Request = c.Request.WithContext(ctx)

		requestLogger.Debug("request started")

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int(logging.FieldStatusCode, status),
			logging.Duration(time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case status >= 500:
			requestLogger.Error("request completed with server error", fields...)
		case status >= 400:
			requestLogger.Warn("request completed with client error", fields...)
		default:
			requestLogger.Info("request completed", fields...)
		}
	}
}

func incomingRequestID(c *gin.Context) string {
	if id := c.GetHeader(HeaderRequestID); util.ValidateUUID(id) == nil {
		return id
	}
	return uuid.New().String()
}

// GetLogger retrieves the request-scoped logger from Gin context.
// Returns a no-op logger if not found.
func GetLogger(c *gin.Context) *zap.Logger {
	if logger, exists := c.Get(ContextKeyLogger); exists {
		if l, ok := logger.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// GetRequestID retrieves the request ID from Gin context.
// Returns empty string if not found.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
