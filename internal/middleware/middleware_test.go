package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/health":                                "/health",
		"/v1/accounts":                           "/v1/accounts",
		"/v1/accounts/:account_id":               "/v1/accounts/{account_id}",
		"/v1/accounts/3455667":                   "/v1/accounts/{account_id}",
		"/v1/accounts/3455667/notifications":     "/v1/accounts/{account_id}/notifications",
		"/v1/accounts/:account_id/notifications": "/v1/accounts/{account_id}/notifications",
		"/v1/transfers":                          "/v1/transfers",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestMetrics_UsesRouteLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/v1/accounts/:account_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := telemetry.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/v1/accounts/{account_id}", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

// withRecordingTracer installs an in-memory span exporter for the duration of the test.
func withRecordingTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	prev := telemetry.Tracer
	telemetry.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		telemetry.Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestTracing_RecordsServerSpan(t *testing.T) {
	exporter := withRecordingTracer(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing())
	r.GET("/v1/accounts/:account_id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/42", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /v1/accounts/{account_id}", spans[0].Name)
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	exporter := withRecordingTracer(t)

	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prevProp)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing())
	r.POST("/v1/transfers", func(c *gin.Context) { c.Status(http.StatusOK) })

	const (
		traceID  = "4bf92f3577b34da6a3ce929d0e0e4736"
		parentID = "00f067aa0ba902b7"
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-"+parentID+"-01")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, traceID, spans[0].SpanContext.TraceID().String())
	assert.Equal(t, parentID, spans[0].Parent.SpanID().String())
	assert.True(t, spans[0].Parent.IsRemote())
}
