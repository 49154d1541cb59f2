// Package middleware provides the gin middleware chain of the jewelry API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are exact request paths that get no span.
	SkipPaths []string
}

// DefaultTracingConfig skips health probes and the long-lived event stream.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "jewelry-api",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/api/v1/health", "/api/v1/realtime/stream"},
	}
}

func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig starts a server span per request through otelgin,
// named "METHOD /route/:param".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !slices.Contains(cfg.SkipPaths, r.URL.Path)
	}))
}

// SpanErrorMarker flags the span of any 4xx or 5xx response as an error.
// It must run inside Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		span := trace.SpanFromContext(c.Request.Context())
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

// TracingAttributeInjector copies the request id and the authenticated
// caller onto the span. It must run after both Tracing and the JWT
// middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			var attrs []attribute.KeyValue
			for key, value := range map[string]string{
				"request_id": c.GetString(RequestIDKey),
				"user_id":    GetJWTUserID(c),
				"user.role":  GetJWTRole(c),
			} {
				if value != "" {
					attrs = append(attrs, attribute.String(key, value))
				}
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}
