package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var accountIDPattern = regexp.MustCompile(`^/v1/accounts/[^/]+`)

// routeOf returns the matched gin route, or the normalized raw path for unmatched requests.
func routeOf(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return normalizePath(path)
	}
	return normalizePath(c.Request.URL.Path)
}

// normalizePath converts high-cardinality paths to low-cardinality patterns
func normalizePath(path string) string {
	path = strings.ReplaceAll(path, ":account_id", "{account_id}")
	return accountIDPattern.ReplaceAllString(path, "/v1/accounts/{account_id}")
}

// Tracing middleware starts a server span per request, continuing the caller's trace when
// the request carries propagation headers.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		if telemetry.Tracer == nil {
			c.Next()
			return
		}

		route := routeOf(c)
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := telemetry.Tracer.Start(ctx, "HTTP "+c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", c.Request.URL.Path),
				attribute.String("http.user_agent", c.Request.UserAgent()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		statusCode := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.Float64("http.duration_ms", float64(time.Since(start).Milliseconds())),
		)

		switch {
		case statusCode >= 500:
			span.SetStatus(codes.Error, "server error")
		case statusCode >= 400:
			// Rejected requests are business outcomes, the span stays unset.
		default:
			span.SetStatus(codes.Ok, "")
		}
	}
}
