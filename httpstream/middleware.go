package httpstream

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/logger"
)

const requestIDKey = "request_id"

// recovery turns a handler panic into a 500 unless the body was already started.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", err),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError,
						errors.Internal(fmt.Errorf("%v", err)).ToResponse())
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// requestID injects a unique X-Request-Id header into every request/response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// requestLogger logs every request except health checks.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             status,
			logger.FieldBytes:    c.Writer.Size(),
			logger.FieldDuration: latency.Milliseconds(),
			requestIDKey:         c.GetString(requestIDKey),
		}
		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}

// respondWithError writes err as the JSON error envelope.
func respondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}
