package rest

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"learnsol-identity/pkg/logger"
)

// AllGroups registers a middleware on the engine itself rather than on a group.
const AllGroups = "*"

const RequestIDHeader = "X-Request-ID"

type Middleware struct {
	Handler gin.HandlerFunc
	Group   string
}

func NewMiddleware(group string, handler gin.HandlerFunc) Middleware {
	return Middleware{
		Group:   group,
		Handler: handler,
	}
}

// RequestIDMiddleware propagates X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(string(logger.RequestIDKey), requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID))
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.WithContext(c.Request.Context()).Infof(
			"http_request method=%s path=%s status=%d ip=%s latency_ms=%d",
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(start).Milliseconds(),
		)
	}
}
