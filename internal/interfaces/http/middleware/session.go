// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/session"
)

const sessionHeader = "X-Session-Token"

// Session resolves the anonymous storefront session. A valid token in the
// X-Session-Token header binds the request to its existing cart; otherwise
// a fresh session is issued and the new token returned in the response
// header so the client can persist it.
func Session(cfg *config.Config) gin.HandlerFunc {
	tokens := session.NewTokenManager(cfg)

	return func(c *gin.Context) {
		headerValue := c.GetHeader(sessionHeader)
		if headerValue != "" {
			tokenString := session.ExtractTokenFromHeader(headerValue)
			if claims, err := tokens.Validate(tokenString); err == nil {
				c.Set("session_id", claims.SessionID)
				c.Next()
				return
			}
		}

		// Missing or invalid token: start a fresh session
		token, sessionID, err := tokens.Issue()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create session",
			})
			c.Abort()
			return
		}

		c.Set("session_id", sessionID)
		c.Header(sessionHeader, token)

		c.Next()
	}
}

// GetSessionID extracts the session id from gin context
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		return "", false
	}
	return sessionID.(string), true
}
