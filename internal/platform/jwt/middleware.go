package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatbot_backend/internal/api"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userID"

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*Claims, error)
}

// UserResolver confirms that the subject of a valid token is still a real user.
type UserResolver interface {
	UserExists(ctx context.Context, userID uint) (bool, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return tokenStr, tokenStr != ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
// resolver may be nil, in which case a valid signature is sufficient.
func AuthRequired(verifier TokenVerifier, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		tokenStr, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.VerifyToken(tokenStr)
		if err != nil {
			slog.Warn("token verification failed", "error", err, "remote_addr", c.ClientIP())
			abortUnauthorized(c)
			return
		}

		// 3. The token must still point at a real user
		if resolver != nil {
			exists, err := resolver.UserExists(c.Request.Context(), claims.UserID)
			if err != nil {
				slog.Error("user lookup failed", "error", err, "user_id", claims.UserID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
				return
			}
			if !exists {
				slog.Warn("token for unknown user", "user_id", claims.UserID, "remote_addr", c.ClientIP())
				abortUnauthorized(c)
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// AuthOptional attaches the user id when a valid bearer token is present and
// lets anonymous requests through otherwise.
func AuthOptional(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := verifier.VerifyToken(tokenStr); err == nil {
				c.Set(ContextUserID, claims.UserID)
			}
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user id set by the middleware.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
