package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/logcontext"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	callerKey       = "caller"
)

// requestContext tags the request context with a request id for logging and
// records the request duration once the handler chain returns.
func requestContext(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := logcontext.AppendCtx(c.Request.Context(), slog.String("requestId", requestID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.GetOrCreateHistogram(fmt.Sprintf(`http_request_duration_seconds{method=%q,route=%q,status="%d"}`,
			c.Request.Method, route, status)).UpdateDuration(start)

		attrs := []any{"method", c.Request.Method, "route", route, "status", status, "latency", time.Since(start)}
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(c.Request.Context(), "HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(c.Request.Context(), "HTTP request", attrs...)
		default:
			logger.DebugContext(c.Request.Context(), "HTTP request", attrs...)
		}
	}
}

// authenticate requires a valid bearer token and stores the caller.
func authenticate(tokens TokenParser, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		caller, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Rejected token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := logcontext.AppendCtx(c.Request.Context(), slog.String("userId", caller.UserID.String()))
		c.Request = c.Request.WithContext(ctx)
		c.Set(callerKey, caller)
		c.Next()
	}
}

func callerFrom(c *gin.Context) auth.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(auth.Caller)
	return caller
}
