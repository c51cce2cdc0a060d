package web

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"comida-a-casa/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
	ctxWorkspace = "workspace"
	ctxToken     = "session_token"
)

// RequestID adds a unique request ID to the context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger provides structured logging for requests
func Logger(logger *zap.Logger, httpMetrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/health" || path == "/metrics" {
			return
		}

		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if uid := c.GetString(ctxUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("error", errs))
		}

		switch {
		case status >= 500:
			logger.Error("Server error", fields...)
		case status >= 400:
			logger.Warn("Client error", fields...)
		default:
			logger.Info("Request completed", fields...)
		}

		if httpMetrics != nil {
			httpMetrics.RecordRequest(c.Request.Method, path, status, latency)
		}
	}
}

// Recovery recovers from panics and returns a localized 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString(ctxRequestID)),
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": apperr.DefaultMessage,
					"kind":  "internal",
				})
			}
		}()
		c.Next()
	}
}

const rateLimitedMessage = "Demasiadas peticiones. Espera un momento e inténtalo de nuevo."

// UserRateLimiter keeps one token bucket per signed-in user.
type UserRateLimiter struct {
	every rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewUserRateLimiter allows burst requests at once and one more every interval.
func NewUserRateLimiter(interval time.Duration, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		every:    rate.Every(interval),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *UserRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware rejects generation requests above the user's budget.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ctxUserID)
		if key == "" {
			key = c.ClientIP()
		}
		lim := l.limiter(key)
		if !lim.Allow() {
			r := lim.Reserve()
			retry := r.Delay()
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": rateLimitedMessage,
				"kind":  "rate_limited",
			})
			return
		}
		c.Next()
	}
}

// HTTPMetrics counts requests per route.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
}

// NewHTTPMetrics creates the request collectors and registers them on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "comidaacasa",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comidaacasa",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(m.requestDuration, m.requestCount)
	return m
}

// RecordRequest records request metrics
func (m *HTTPMetrics) RecordRequest(method, path string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, s).Inc()
}
