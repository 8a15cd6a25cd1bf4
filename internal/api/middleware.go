package api

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/metrics"
	"alcyxob/fitness-programs/internal/service"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Constants for context keys
const (
	ContextCallerKey    = "caller"
	ContextLoggerKey    = "logger"
	ContextRequestIDKey = "requestID"

	RequestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware logs one line per request and exposes a request-scoped
// logger to handlers. Must run after RequestIDMiddleware.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With("request_id", c.GetString(ContextRequestIDKey))
		c.Set(ContextLoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		reqLogger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// AuthMiddleware verifies the bearer token and stores the caller in the
// context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "No token provided")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		caller, err := authService.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
				return
			}
			respondError(c, err)
			return
		}

		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := getCaller(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "No token provided")
			return
		}
		for _, allowedRole := range allowedRoles {
			if caller.Role == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Access denied")
	}
}

// getCaller returns the identity stored by AuthMiddleware.
func getCaller(c *gin.Context) (*service.Caller, bool) {
	raw, exists := c.Get(ContextCallerKey)
	if !exists {
		return nil, false
	}
	caller, ok := raw.(*service.Caller)
	return caller, ok
}

// mustCaller is getCaller for handlers mounted behind AuthMiddleware.
func mustCaller(c *gin.Context) (*service.Caller, bool) {
	caller, ok := getCaller(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "No token provided")
	}
	return caller, ok
}

func requestLogger(c *gin.Context) *slog.Logger {
	if raw, ok := c.Get(ContextLoggerKey); ok {
		if l, ok := raw.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
