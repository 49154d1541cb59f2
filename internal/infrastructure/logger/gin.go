package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinContextKey is the gin key holding the request-scoped logger.
const GinContextKey = "logger"

// GinMiddleware writes one access line per request and hands handlers a
// logger already tagged with the request id, method and path, both on the
// gin context and on the request context.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request
		requestID := c.GetString("request_id")

		log := base.With(
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		c.Set(GinContextKey, log)
		c.Request = req.WithContext(WithRequestID(WithContext(req.Context(), log), requestID))

		c.Next()

		status := c.Writer.Status()
		ce := log.Check(accessLevel(status), "HTTP Request")
		if ce == nil {
			return
		}
		fields := make([]zap.Field, 0, 7)
		fields = append(fields,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a panic into a 500 in the API error envelope. The stack
// goes to the log, never to the client.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			requestID := c.GetString("request_id")
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", recovered),
				zap.Stack("stacktrace"))

			body := gin.H{"code": "ERR_INTERNAL", "message": "An internal error occurred"}
			if requestID != "" {
				body["request_id"] = requestID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": body})
		}()
		c.Next()
	}
}

// GetGinLogger returns the logger GinMiddleware stored, or a no-op logger.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(GinContextKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
