// Package middleware provides HTTP middleware for the control API router.
//
// Go Learning Note — Middleware Pattern (Gin):
// In Gin, middleware is any gin.HandlerFunc. Each one runs, optionally calls
// c.Next() to pass control down the chain, and calls c.Abort() to stop it.
// Middleware is attached with .Use() on an engine or a route group.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientKey is the context key holding how the caller authenticated.
const ClientKey = "control_client"

const (
	ClientToken = "token"
	ClientOpen  = "open"
)

// ControlAuth guards the control API with a static bearer token. An empty
// token leaves the API open, which is only sensible on a loopback address.
//
// Go Learning Note — Returning Functions (Closures):
// ControlAuth(token) returns a gin.HandlerFunc that captures token. The outer
// function is where configuration goes; the closure runs per request.
func ControlAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Set(ClientKey, ClientOpen)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), want) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid control token"})
			c.Abort()
			return
		}

		c.Set(ClientKey, ClientToken)
		c.Next()
	}
}

// GetClient returns how the request authenticated, or "" outside ControlAuth.
func GetClient(c *gin.Context) string {
	v, ok := c.Get(ClientKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// RequestLogger logs one line per request at debug level, and at warn for
// 5xx responses.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   GetClient(c),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("control request failed")
			return
		}
		entry.Debug("control request")
	}
}
