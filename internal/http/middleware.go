package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmaster/internal/service"
	"taskmaster/internal/service/auth"
)

const (
	claimsKey = "claims"

	msgNotAuthorized = "You are not Authorized"
	msgForbidden     = "You are not Authorized to access this resource"
)

// requireRole admits requests carrying a valid bearer token whose claims include role.
func requireRole(tokens *auth.TokenService, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, service.Fail[any](nil, msgNotAuthorized))
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				c.Header("Token-Expired", "true")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, service.Fail[any](nil, msgNotAuthorized))
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, service.Fail[any](nil, msgForbidden))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requestLogger logs one line per request once the handler chain has finished.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		})
		if claims, ok := c.Get(claimsKey); ok {
			entry = entry.WithField("user_name", claims.(*auth.Claims).UserName)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
