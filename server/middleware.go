package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-industrial/logger"
)

// RequestTracking adds a request ID and logs every request
func RequestTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		switch {
		case status >= http.StatusInternalServerError:
			fields := logger.WithRequest(c)
			fields["status_code"] = status
			fields["duration_ms"] = duration.Milliseconds()
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last
			}
			logger.Error("Request failed with server error", err, fields)
		case status >= http.StatusBadRequest:
			fields := logger.WithRequest(c)
			fields["status_code"] = status
			logger.Warn("Request failed with client error", fields)
		default:
			logger.LogAPIRequest(c, duration, status, nil)
		}
	}
}
