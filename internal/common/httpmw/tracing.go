package httpmw

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/common/tracing"
)

// OtelTracing opens a server span per request. The span is named after the
// matched route, and requests under /boards/:id, /columns/:id or /tasks/:id
// carry the entity id as an attribute.
func OtelTracing(serverName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := tracing.Tracer(serverName).Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Request.Method),
				semconv.HTTPRouteKey.String(route),
			))
		defer span.End()
		if id, ok := c.Request.Context().Value(logger.RequestIDKey).(string); ok && id != "" {
			span.SetAttributes(attribute.String("request.id", id))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if key, ok := entityKey(route); ok {
			if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
				span.SetAttributes(key.Int64(id))
			}
		}
		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
	}
}

func entityKey(route string) (attribute.Key, bool) {
	switch {
	case strings.Contains(route, "/boards/:id"):
		return tracing.BoardIDKey, true
	case strings.Contains(route, "/columns/:id"):
		return tracing.ColumnIDKey, true
	case strings.Contains(route, "/tasks/:id"):
		return tracing.TaskIDKey, true
	}
	return "", false
}
