package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/common/tracing"
)

func TestRequestIDIsPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger.NewNop(), "test"), OtelTracing("test"))

	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestEntityKeyFromRoute(t *testing.T) {
	key, ok := entityKey("/api/v1/boards/:id/state")
	assert.True(t, ok)
	assert.Equal(t, tracing.BoardIDKey, key)

	key, ok = entityKey("/api/v1/columns/:id/tasks")
	assert.True(t, ok)
	assert.Equal(t, tracing.ColumnIDKey, key)

	key, ok = entityKey("/api/v1/tasks/:id")
	assert.True(t, ok)
	assert.Equal(t, tracing.TaskIDKey, key)

	_, ok = entityKey("/api/v1/labels")
	assert.False(t, ok)
}
