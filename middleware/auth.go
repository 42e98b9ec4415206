package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"traceaq/models"
	"traceaq/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// SessionToken reads the session token from the session cookie or the
// Authorization header, in that order.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// JWTAuthMiddleware rejects requests without a live session and sets "userID"
// and "email" in the context.
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Not authenticated"})
			return
		}
		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrAuth) {
				utils.GetLogger().Warn("Session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, utils.ErrorResponse{Message: models.ErrNetwork.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Not authenticated"})
			return
		}
		c.Set("userID", sess.UserID)
		c.Set("email", sess.Email)
		c.Set("token", token)
		c.Next()
	}
}

// OptionalAuthMiddleware sets "userID" when a valid session is present and
// lets the request through either way.
func OptionalAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := SessionToken(c); token != "" {
			if sess, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set("userID", sess.UserID)
				c.Set("email", sess.Email)
				c.Set("token", token)
			}
		}
		c.Next()
	}
}
