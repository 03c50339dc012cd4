package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// tracedRouter builds a router whose spans land in the returned recorder.
func tracedRouter(t *testing.T, status int) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{
		Enabled:        true,
		ServiceName:    "test-service",
		TracerProvider: tp,
	}))
	router.Use(SpanErrorMarker())
	router.POST("/casso/webhook", func(c *gin.Context) {
		c.JSON(status, gin.H{"error": 0})
	})
	return router, sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_RequestIDAttribute(t *testing.T) {
	router, sr := tracedRouter(t, http.StatusOK)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/casso/webhook", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	span := findSpan(t, sr, "POST /casso/webhook")
	id, ok := spanAttr(span, "request_id")
	assert.True(t, ok, "request_id attribute not found in span")
	assert.Equal(t, "req-123", id)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusForbidden, "Forbidden"},
		{http.StatusRequestEntityTooLarge, "Payload Too Large"},
		{http.StatusUnprocessableEntity, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			router, sr := tracedRouter(t, tt.status)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/casso/webhook", nil)
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			span := findSpan(t, sr, "POST /casso/webhook")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}

	t.Run("server errors", func(t *testing.T) {
		router, sr := tracedRouter(t, http.StatusInternalServerError)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/casso/webhook", nil)
		router.ServeHTTP(w, req)

		// otelgin may set the description itself for 5xx
		span := findSpan(t, sr, "POST /casso/webhook")
		assert.Equal(t, codes.Error, span.Status().Code)
	})
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Internal Server Error", statusMessage(http.StatusBadGateway))
	assert.Equal(t, "Not Found", statusMessage(http.StatusNotFound))
	assert.Equal(t, "Client Error", statusMessage(http.StatusBadRequest))
}
