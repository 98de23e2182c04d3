package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/infra/metrics"
	"storefront-api/internal/infra/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	principalKey    = "principal"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// TimeoutMiddleware bounds the request context. Store calls observe the deadline.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("trace_id", tracing.TraceID(c.Request.Context())),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if p, ok := principalFrom(c); ok {
			fields = append(fields, zap.Uint64("user_id", p.UserID))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP Request", fields...)
			return
		}
		logger.Info("HTTP Request", fields...)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Authenticate verifies the bearer token and reloads the account so deleted
// users and revoked admin rights take effect immediately.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := bearerToken(c)
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		p, err := h.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := h.users.GetProfile(c.Request.Context(), p.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			h.respondError(c, err)
			return
		}

		c.Set(principalKey, domain.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
		c.Next()
	}
}

// OptionalAuthenticate attaches the principal when a valid token is sent and
// otherwise lets the request through anonymously.
func (h *Handler) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := bearerToken(c)
		if !found {
			c.Next()
			return
		}
		p, err := h.tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := h.users.GetProfile(c.Request.Context(), p.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				h.logger.Warn("Failed to load user for optional auth", zap.Uint64("user_id", p.UserID), zap.Error(err))
			}
			c.Next()
			return
		}
		c.Set(principalKey, domain.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok || !p.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// mustPrincipal is only used behind Authenticate.
func mustPrincipal(c *gin.Context) domain.Principal {
	p, _ := principalFrom(c)
	return p
}
