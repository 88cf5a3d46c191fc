// internal/pkg/session/token.go
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
)

// Claims represents the session token claims. A session is anonymous: the
// session id keys the cart, nothing else.
type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates storefront session tokens
type TokenManager struct {
	config *config.Config
}

// NewTokenManager creates a new session token manager
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		config: cfg,
	}
}

// Issue generates a token for a fresh session id
func (t *TokenManager) Issue() (string, string, error) {
	sessionID := uuid.NewString()
	token, err := t.IssueFor(sessionID)
	return token, sessionID, err
}

// IssueFor generates a token carrying the given session id
func (t *TokenManager) IssueFor(sessionID string) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Session.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.App.Name,
			Subject:   fmt.Sprintf("session:%s", sessionID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.Session.Secret))
}

// Validate validates and parses a session token
func (t *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.config.Session.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.SessionID == "" {
		return nil, fmt.Errorf("session id not specified")
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts a session token from an X-Session-Token
// or Authorization header value
func ExtractTokenFromHeader(headerValue string) string {
	if len(headerValue) > 7 && headerValue[:7] == "Bearer " {
		return headerValue[7:]
	}
	return headerValue
}
